package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taskport/taskport-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	CreateUsers(ctx context.Context, users []*model.User) ([]*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error)
	CountUsers(ctx context.Context, organizationID string, statuses []string) (int64, error)
	CountUsersByOrganization(ctx context.Context) (map[string]int64, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	UpdateUserStatus(ctx context.Context, id, fromStatus, toStatus string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	CompleteInvitedRegistration(ctx context.Context, id, name, passwordHash string) (*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated. The super-admin flag has
// no field here on purpose: no update path may grant it.
type UpdateUserParams struct {
	Name           *string
	Email          *string
	PasswordHash   *string
	Mobile         *string
	CountryISDCode *string
	Address        *model.Address
	EmailService   *bool
	SMSService     *bool
	RoleTitles     []string
	AccountAdmin   *bool
	Status         *string
}

// FilterUsersParams defines the parameters for filtering users.
type FilterUsersParams struct {
	OrganizationID *string
	Statuses       []string
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the users repository and ensures the unique
// email index. Email uniqueness is system-wide, not per organization.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "organization_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) CreateUsers(ctx context.Context, users []*model.User) ([]*model.User, error) {
	now := time.Now()
	docs := make([]any, 0, len(users))
	for _, user := range users {
		user.CreatedAt = now
		user.UpdatedAt = now
		docs = append(docs, user)
	}

	result, err := r.db.Collection(userCollection).InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}

	for i, id := range result.InsertedIDs {
		if objectID, ok := id.(bson.ObjectID); ok && i < len(users) {
			users[i].ID = objectID
		}
	}

	return users, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error) {
	filter := bson.M{}
	if params.OrganizationID != nil {
		objectID, err := bson.ObjectIDFromHex(*params.OrganizationID)
		if err != nil {
			return nil, err
		}
		filter["organization_id"] = objectID
	}
	if len(params.Statuses) > 0 {
		filter["status"] = bson.M{"$in": params.Statuses}
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userMongoRepository) CountUsers(ctx context.Context, organizationID string, statuses []string) (int64, error) {
	objectID, err := bson.ObjectIDFromHex(organizationID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{"organization_id": objectID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	return r.db.Collection(userCollection).CountDocuments(ctx, filter)
}

// CountUsersByOrganization aggregates member counts keyed by organization
// hex id, for the super-admin organization listing.
func (r *userMongoRepository) CountUsersByOrganization(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$organization_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.db.Collection(userCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			ID    bson.ObjectID `bson:"_id"`
			Count int64         `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID.Hex()] = row.Count
	}

	return counts, cursor.Err()
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Email != nil {
		updateMap["email"] = *params.Email
	}
	if params.PasswordHash != nil {
		updateMap["password_hash"] = *params.PasswordHash
	}
	if params.Mobile != nil {
		updateMap["mobile"] = *params.Mobile
	}
	if params.CountryISDCode != nil {
		updateMap["country_isd_code"] = *params.CountryISDCode
	}
	if params.Address != nil {
		updateMap["address"] = *params.Address
	}
	if params.EmailService != nil {
		updateMap["email_service"] = *params.EmailService
	}
	if params.SMSService != nil {
		updateMap["sms_service"] = *params.SMSService
	}
	if params.RoleTitles != nil {
		updateMap["role_titles"] = params.RoleTitles
	}
	if params.AccountAdmin != nil {
		updateMap["permissions.is_account_admin"] = *params.AccountAdmin
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUserStatus transitions a user between statuses only when the current
// status matches fromStatus, in one atomic operation.
func (r *userMongoRepository) UpdateUserStatus(ctx context.Context, id, fromStatus, toStatus string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": fromStatus},
		bson.M{"$set": bson.M{"status": toStatus, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	return err
}

// CompleteInvitedRegistration finishes an invite: the user must still be in
// invited status, and becomes active with the chosen name and password.
func (r *userMongoRepository) CompleteInvitedRegistration(
	ctx context.Context,
	id, name, passwordHash string,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": model.UserStatusInvited},
		bson.M{"$set": bson.M{
			"name":          name,
			"password_hash": passwordHash,
			"status":        model.UserStatusActive,
			"updated_at":    time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
