package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Contact is an entry in a user's personal directory. ContactUserID is set
// when the contact email belongs to a registered user; until then
// ContactEmail is the only handle, and registration back-fills the reference.
type Contact struct {
	ID            bson.ObjectID `bson:"_id,omitempty"          json:"id"`
	OwnerID       bson.ObjectID `bson:"owner_id"               json:"ownerId"`
	ContactUserID bson.ObjectID `bson:"contact_user,omitempty" json:"contactUser,omitempty"`
	ContactEmail  string        `bson:"contact_email"          json:"contactEmail"`
	Relationship  string        `bson:"relationship,omitempty" json:"relationship,omitempty"`
	Aliases       []string      `bson:"aliases,omitempty"      json:"aliases,omitempty"`
	IsDeleted     bool          `bson:"is_deleted"             json:"-"`
	CreatedAt     time.Time     `bson:"created_at"             json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at"             json:"updatedAt"`
}
