package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
)

// NotificationRepository defines the interface for stored notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) (*model.Notification, error)
	ListNotifications(ctx context.Context, recipientID string) ([]*model.Notification, error)
}

const notificationCollection = "notifications"

type notificationMongoRepository struct {
	db *mongo.Database
}

// NewNotificationMongoRepository creates a new MongoDB repository for
// notifications.
func NewNotificationMongoRepository(db *mongo.Database) NotificationRepository {
	return &notificationMongoRepository{db: db}
}

func (r *notificationMongoRepository) CreateNotification(
	ctx context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	notification.NotifiedAt = time.Now()

	result, err := r.db.Collection(notificationCollection).InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		notification.ID = objectID
	}

	return notification, nil
}

func (r *notificationMongoRepository) ListNotifications(
	ctx context.Context,
	recipientID string,
) ([]*model.Notification, error) {
	objectID, err := bson.ObjectIDFromHex(recipientID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(notificationCollection).Find(ctx, bson.M{
		"recipient_id": objectID,
		"is_deleted":   false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	for cursor.Next(ctx) {
		var notification model.Notification
		if err := cursor.Decode(&notification); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notification)
	}

	return notifications, cursor.Err()
}
