package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
)

// SessionRepository defines the interface for session-related database
// operations. Sessions are only ever created or expired, never mutated
// otherwise.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) (*model.Session, error)
	GetActiveSessionByToken(ctx context.Context, token string) (*model.Session, error)
	ListActiveSessions(ctx context.Context, userID string) ([]*model.Session, error)
	ExpireSession(ctx context.Context, token string) error
	ExpireOtherSessions(ctx context.Context, userID, exceptToken string) error
}

const sessionCollection = "sessions"

type sessionMongoRepository struct {
	db *mongo.Database
}

// NewSessionMongoRepository creates a new MongoDB repository for sessions.
func NewSessionMongoRepository(db *mongo.Database) SessionRepository {
	return &sessionMongoRepository{db: db}
}

func (r *sessionMongoRepository) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.db.Collection(sessionCollection).InsertOne(ctx, session)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		session.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return session, nil
}

func (r *sessionMongoRepository) GetActiveSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	result := r.db.Collection(sessionCollection).FindOne(ctx, bson.M{
		"token":  token,
		"status": model.SessionStatusActive,
	})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.Session
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionMongoRepository) ListActiveSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(sessionCollection).Find(ctx, bson.M{
		"user_id": objectID,
		"status":  model.SessionStatusActive,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	for cursor.Next(ctx) {
		var session model.Session
		if err := cursor.Decode(&session); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}

	return sessions, cursor.Err()
}

func (r *sessionMongoRepository) ExpireSession(ctx context.Context, token string) error {
	result, err := r.db.Collection(sessionCollection).UpdateOne(
		ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"status": model.SessionStatusExpired, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ExpireOtherSessions force-expires every active session of the user except
// the one identified by exceptToken.
func (r *sessionMongoRepository) ExpireOtherSessions(ctx context.Context, userID, exceptToken string) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(sessionCollection).UpdateMany(
		ctx,
		bson.M{
			"user_id": objectID,
			"status":  model.SessionStatusActive,
			"token":   bson.M{"$ne": exceptToken},
		},
		bson.M{"$set": bson.M{"status": model.SessionStatusExpired, "updated_at": time.Now()}},
	)
	return err
}
