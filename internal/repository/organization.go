package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taskport/taskport-api/internal/model"
)

// OrganizationRepository defines the interface for organization-related
// database operations. Organizations are never hard-deleted.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org *model.Organization) (*model.Organization, error)
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]*model.Organization, error)
	UpdateOrganization(ctx context.Context, id string, params UpdateOrganizationParams) (*model.Organization, error)
	SetAdminRefs(ctx context.Context, id string, userID bson.ObjectID) error
	SetSubscription(ctx context.Context, id string, params SetSubscriptionParams) error
}

// UpdateOrganizationParams defines the optional parameters for updating an
// organization's editable fields.
type UpdateOrganizationParams struct {
	Name           *string
	Address        *model.Address
	PrimaryAdminID *string
}

// SetSubscriptionParams persists the outcome of a plan change. The snapshot
// is the full plan document at change time; a nil snapshot together with a
// zero PlanID records a cancellation. The optional fields are written only
// when set.
type SetSubscriptionParams struct {
	PlanID               bson.ObjectID
	PlanSnapshot         *model.SubscriptionPlan
	BilledAmount         *float64
	StripeCustomerID     *string
	StripeSubscriptionID *string
}

const organizationCollection = "organizations"

type organizationMongoRepository struct {
	db *mongo.Database
}

// NewOrganizationMongoRepository creates a new MongoDB repository for
// organizations.
func NewOrganizationMongoRepository(db *mongo.Database) OrganizationRepository {
	return &organizationMongoRepository{db: db}
}

func (r *organizationMongoRepository) CreateOrganization(
	ctx context.Context,
	org *model.Organization,
) (*model.Organization, error) {
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	result, err := r.db.Collection(organizationCollection).InsertOne(ctx, org)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		org.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return org, nil
}

func (r *organizationMongoRepository) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(organizationCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var org model.Organization
	if err := result.Decode(&org); err != nil {
		return nil, err
	}

	return &org, nil
}

func (r *organizationMongoRepository) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	cursor, err := r.db.Collection(organizationCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []*model.Organization
	for cursor.Next(ctx) {
		var org model.Organization
		if err := cursor.Decode(&org); err != nil {
			return nil, err
		}
		orgs = append(orgs, &org)
	}

	return orgs, cursor.Err()
}

func (r *organizationMongoRepository) UpdateOrganization(
	ctx context.Context,
	id string,
	params UpdateOrganizationParams,
) (*model.Organization, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Address != nil {
		updateMap["address"] = *params.Address
	}
	if params.PrimaryAdminID != nil {
		adminID, err := bson.ObjectIDFromHex(*params.PrimaryAdminID)
		if err != nil {
			return nil, err
		}
		updateMap["primary_admin"] = adminID
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no organization fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(organizationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var org model.Organization
	if err := result.Decode(&org); err != nil {
		return nil, err
	}

	return &org, nil
}

// SetAdminRefs points createdBy and primaryAdmin at the registering user.
// Registration creates the organization before its first user, so the refs
// are filled in afterwards.
func (r *organizationMongoRepository) SetAdminRefs(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(organizationCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"created_by":    userID,
			"primary_admin": userID,
			"updated_at":    time.Now(),
		}},
	)
	return err
}

func (r *organizationMongoRepository) SetSubscription(
	ctx context.Context,
	id string,
	params SetSubscriptionParams,
) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"plan_id":       params.PlanID,
		"plan_snapshot": params.PlanSnapshot,
		"updated_at":    time.Now(),
	}
	if params.BilledAmount != nil {
		set["billed_amount"] = *params.BilledAmount
	}
	if params.StripeCustomerID != nil {
		set["stripe_customer_id"] = *params.StripeCustomerID
	}
	if params.StripeSubscriptionID != nil {
		set["stripe_subscription_id"] = *params.StripeSubscriptionID
	}

	_, err = r.db.Collection(organizationCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
	)
	return err
}
