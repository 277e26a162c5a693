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

// GroupRepository defines the interface for group operations. All reads are
// scoped to the organization and exclude soft-deleted groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error)
	GetGroup(ctx context.Context, id, organizationID string) (*model.Group, error)
	ListGroups(ctx context.Context, organizationID string) ([]*model.Group, error)
	UpdateGroup(ctx context.Context, id, organizationID string, params UpdateGroupParams) (*model.Group, error)
	SoftDeleteGroup(ctx context.Context, id, organizationID string) (*model.Group, error)
}

// UpdateGroupParams defines the editable group fields.
type UpdateGroupParams struct {
	Name    *string
	Members []model.GroupMember
}

const groupCollection = "groups"

type groupMongoRepository struct {
	db *mongo.Database
}

// NewGroupMongoRepository creates a new MongoDB repository for groups.
func NewGroupMongoRepository(db *mongo.Database) GroupRepository {
	return &groupMongoRepository{db: db}
}

func (r *groupMongoRepository) CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error) {
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	result, err := r.db.Collection(groupCollection).InsertOne(ctx, group)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		group.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return group, nil
}

func (r *groupMongoRepository) GetGroup(ctx context.Context, id, organizationID string) (*model.Group, error) {
	filter, err := groupFilter(id, organizationID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(groupCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var group model.Group
	if err := result.Decode(&group); err != nil {
		return nil, err
	}

	return &group, nil
}

func (r *groupMongoRepository) ListGroups(ctx context.Context, organizationID string) ([]*model.Group, error) {
	orgObjectID, err := bson.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(groupCollection).Find(ctx, bson.M{
		"organization_id": orgObjectID,
		"is_deleted":      false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*model.Group
	for cursor.Next(ctx) {
		var group model.Group
		if err := cursor.Decode(&group); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}

	return groups, cursor.Err()
}

func (r *groupMongoRepository) UpdateGroup(
	ctx context.Context,
	id, organizationID string,
	params UpdateGroupParams,
) (*model.Group, error) {
	filter, err := groupFilter(id, organizationID)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Members != nil {
		updateMap["members"] = params.Members
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no group fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(groupCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var group model.Group
	if err := result.Decode(&group); err != nil {
		return nil, err
	}

	return &group, nil
}

func (r *groupMongoRepository) SoftDeleteGroup(ctx context.Context, id, organizationID string) (*model.Group, error) {
	filter, err := groupFilter(id, organizationID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(groupCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var group model.Group
	if err := result.Decode(&group); err != nil {
		return nil, err
	}

	return &group, nil
}

func groupFilter(id, organizationID string) (bson.M, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	orgObjectID, err := bson.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, err
	}

	return bson.M{
		"_id":             objectID,
		"organization_id": orgObjectID,
		"is_deleted":      false,
	}, nil
}
