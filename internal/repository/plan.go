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

// PlanRepository defines the interface for subscription plan operations.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) (*model.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	GetActivePlan(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	ListPlans(ctx context.Context, status string) ([]*model.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id string, params UpdatePlanParams) (*model.SubscriptionPlan, error)
}

// UpdatePlanParams defines the editable plan fields. Price and duration are
// absent on purpose: pricing is immutable once a plan may have subscribers.
type UpdatePlanParams struct {
	Name          *string
	Description   *string
	IsMostPopular *bool
	Status        *string
}

const planCollection = "plans"

type planMongoRepository struct {
	db *mongo.Database
}

// NewPlanMongoRepository creates a new MongoDB repository for subscription
// plans.
func NewPlanMongoRepository(db *mongo.Database) PlanRepository {
	return &planMongoRepository{db: db}
}

func (r *planMongoRepository) CreatePlan(
	ctx context.Context,
	plan *model.SubscriptionPlan,
) (*model.SubscriptionPlan, error) {
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.db.Collection(planCollection).InsertOne(ctx, plan)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		plan.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return plan, nil
}

func (r *planMongoRepository) GetPlan(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	return r.findPlan(ctx, id, bson.M{})
}

// GetActivePlan resolves a plan only while it is purchasable.
func (r *planMongoRepository) GetActivePlan(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	return r.findPlan(ctx, id, bson.M{"status": model.PlanStatusActive})
}

func (r *planMongoRepository) findPlan(ctx context.Context, id string, filter bson.M) (*model.SubscriptionPlan, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	filter["_id"] = objectID

	result := r.db.Collection(planCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var plan model.SubscriptionPlan
	if err := result.Decode(&plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planMongoRepository) ListPlans(ctx context.Context, status string) ([]*model.SubscriptionPlan, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "status", Value: 1},
		{Key: "price", Value: 1},
	})

	cursor, err := r.db.Collection(planCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []*model.SubscriptionPlan
	for cursor.Next(ctx) {
		var plan model.SubscriptionPlan
		if err := cursor.Decode(&plan); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}

	return plans, cursor.Err()
}

func (r *planMongoRepository) UpdatePlan(
	ctx context.Context,
	id string,
	params UpdatePlanParams,
) (*model.SubscriptionPlan, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.IsMostPopular != nil {
		updateMap["is_most_popular"] = *params.IsMostPopular
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no plan fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(planCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var plan model.SubscriptionPlan
	if err := result.Decode(&plan); err != nil {
		return nil, err
	}

	return &plan, nil
}
