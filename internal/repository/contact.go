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

// ContactRepository defines the interface for contact directory operations.
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *model.Contact) (*model.Contact, error)
	GetContact(ctx context.Context, id, ownerID string) (*model.Contact, error)
	ListContacts(ctx context.Context, ownerID string) ([]*model.Contact, error)
	CountContacts(ctx context.Context, ownerID string) (int64, error)
	UpdateContact(ctx context.Context, id string, params UpdateContactParams) (*model.Contact, error)
	SoftDeleteContact(ctx context.Context, id string) (*model.Contact, error)

	// ListRelationships returns the distinct relationship labels used by the
	// owner's contacts.
	ListRelationships(ctx context.Context, ownerID string) ([]string, error)

	// LinkUserByEmail back-fills the contact-user reference on every pending
	// contact entry matching the email of a newly registered user.
	LinkUserByEmail(ctx context.Context, email string, userID bson.ObjectID) error
}

// UpdateContactParams defines the editable contact fields.
type UpdateContactParams struct {
	ContactEmail *string
	Relationship *string
	Aliases      []string
}

const contactCollection = "contacts"

type contactMongoRepository struct {
	db *mongo.Database
}

// NewContactMongoRepository creates a new MongoDB repository for contacts.
func NewContactMongoRepository(db *mongo.Database) ContactRepository {
	return &contactMongoRepository{db: db}
}

func (r *contactMongoRepository) CreateContact(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	result, err := r.db.Collection(contactCollection).InsertOne(ctx, contact)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		contact.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return contact, nil
}

func (r *contactMongoRepository) GetContact(ctx context.Context, id, ownerID string) (*model.Contact, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	ownerObjectID, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(contactCollection).FindOne(ctx, bson.M{
		"_id":        objectID,
		"owner_id":   ownerObjectID,
		"is_deleted": false,
	})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var contact model.Contact
	if err := result.Decode(&contact); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (r *contactMongoRepository) ListContacts(ctx context.Context, ownerID string) ([]*model.Contact, error) {
	ownerObjectID, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(contactCollection).Find(ctx, bson.M{
		"owner_id":   ownerObjectID,
		"is_deleted": false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contacts []*model.Contact
	for cursor.Next(ctx) {
		var contact model.Contact
		if err := cursor.Decode(&contact); err != nil {
			return nil, err
		}
		contacts = append(contacts, &contact)
	}

	return contacts, cursor.Err()
}

func (r *contactMongoRepository) ListRelationships(ctx context.Context, ownerID string) ([]string, error) {
	ownerObjectID, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(contactCollection).Distinct(ctx, "relationship", bson.M{
		"owner_id":     ownerObjectID,
		"is_deleted":   false,
		"relationship": bson.M{"$ne": ""},
	})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var relationships []string
	if err := result.Decode(&relationships); err != nil {
		return nil, err
	}

	return relationships, nil
}

func (r *contactMongoRepository) CountContacts(ctx context.Context, ownerID string) (int64, error) {
	ownerObjectID, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, err
	}

	return r.db.Collection(contactCollection).CountDocuments(ctx, bson.M{
		"owner_id":   ownerObjectID,
		"is_deleted": false,
	})
}

func (r *contactMongoRepository) UpdateContact(
	ctx context.Context,
	id string,
	params UpdateContactParams,
) (*model.Contact, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.ContactEmail != nil {
		updateMap["contact_email"] = *params.ContactEmail
	}
	if params.Relationship != nil {
		updateMap["relationship"] = *params.Relationship
	}
	if params.Aliases != nil {
		updateMap["aliases"] = params.Aliases
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no contact fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(contactCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "is_deleted": false},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var contact model.Contact
	if err := result.Decode(&contact); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (r *contactMongoRepository) SoftDeleteContact(ctx context.Context, id string) (*model.Contact, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(contactCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var contact model.Contact
	if err := result.Decode(&contact); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (r *contactMongoRepository) LinkUserByEmail(ctx context.Context, email string, userID bson.ObjectID) error {
	_, err := r.db.Collection(contactCollection).UpdateMany(
		ctx,
		bson.M{"contact_email": email},
		bson.M{"$set": bson.M{"contact_user": userID, "updated_at": time.Now()}},
	)
	return err
}
