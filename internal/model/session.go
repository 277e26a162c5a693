package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session status values.
const (
	SessionStatusActive  = "active"
	SessionStatusBlocked = "blocked"
	SessionStatusExpired = "expired"
)

// Authentication providers a session can originate from.
const (
	AuthProviderTaskport = "taskport"
	AuthProviderGoogle   = "google"
	AuthProviderFacebook = "facebook"
)

// Session represents one logical login. The token is generated once at
// creation and never changes; logout and forced expiry flip the status to
// expired instead of deleting the row.
type Session struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       bson.ObjectID `bson:"user_id"       json:"userId"`
	Token        string        `bson:"token"         json:"token"`
	Status       string        `bson:"status"        json:"status"`
	AuthProvider string        `bson:"auth_provider" json:"-"`
	IPAddress    string        `bson:"ip_address"    json:"-"`
	UserAgent    string        `bson:"user_agent"    json:"-"`
	CreatedAt    time.Time     `bson:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at"    json:"updatedAt"`
}
