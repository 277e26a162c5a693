package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taskport/taskport-api/internal/model"
)

// CodeRepository defines the interface for verification code operations.
type CodeRepository interface {
	// CreateCode stores a freshly issued verification code.
	CreateCode(ctx context.Context, code *model.VerificationCode) (*model.VerificationCode, error)

	// ConsumeCode atomically finds a valid code matching the given value and
	// kind and marks it used, returning the pre-update snapshot. Concurrent
	// attempts on the same code see exactly one success.
	ConsumeCode(ctx context.Context, code, kind string) (*model.VerificationCode, error)

	// DeleteExpiredCodes removes codes past their expiry.
	DeleteExpiredCodes(ctx context.Context) (int64, error)
}

const codeCollection = "codes"

type codeMongoRepository struct {
	db *mongo.Database
}

// NewCodeMongoRepository creates a new MongoDB repository for verification
// codes.
func NewCodeMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) CodeRepository {
	collection := db.Collection(codeCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "machine_code", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create code indexes")
	}

	return &codeMongoRepository{db: db}
}

func (r *codeMongoRepository) CreateCode(
	ctx context.Context,
	code *model.VerificationCode,
) (*model.VerificationCode, error) {
	now := time.Now()
	code.CreatedAt = now
	code.UpdatedAt = now
	code.IsUsed = false

	result, err := r.db.Collection(codeCollection).InsertOne(ctx, code)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		code.ID = objectID
	}

	return code, nil
}

func (r *codeMongoRepository) ConsumeCode(ctx context.Context, code, kind string) (*model.VerificationCode, error) {
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"machine_code": code},
				bson.M{"human_code": code},
			}},
			bson.M{"kind": kind},
			bson.M{"expires_at": bson.M{"$gte": time.Now()}},
			bson.M{"is_used": false},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"is_used":    true,
			"updated_at": time.Now(),
		},
	}

	// Returning the pre-update document keeps find-and-mark-used a single
	// atomic step; there is no window for a second redeemer.
	result := r.db.Collection(codeCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var consumed model.VerificationCode
	if err := result.Decode(&consumed); err != nil {
		return nil, err
	}

	return &consumed, nil
}

func (r *codeMongoRepository) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	result, err := r.db.Collection(codeCollection).DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
