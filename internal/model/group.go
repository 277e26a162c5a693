package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Group member roles.
const (
	GroupRoleLeaderAndAdmin = "LEADER_AND_ADMIN"
	GroupRoleAdmin          = "ADMIN"
	GroupRoleMember         = "MEMBER"
	GroupRoleUnspecified    = "UNSPECIFIED"
)

// GroupMember links a group entry to a user or a contact.
type GroupMember struct {
	UserID    bson.ObjectID `bson:"user_id,omitempty"    json:"userId,omitempty"`
	ContactID bson.ObjectID `bson:"contact_id,omitempty" json:"contactId,omitempty"`
	Role      string        `bson:"role"                 json:"role"`
}

// Group is a named set of members within an organization. Deletion is soft:
// IsDeleted hides the group from every read path.
type Group struct {
	ID             bson.ObjectID `bson:"_id,omitempty"   json:"id"`
	Name           string        `bson:"name"            json:"name"`
	OrganizationID bson.ObjectID `bson:"organization_id" json:"organizationId"`
	Members        []GroupMember `bson:"members"         json:"members"`
	CreatedByID    bson.ObjectID `bson:"created_by"      json:"createdBy"`
	IsDeleted      bool          `bson:"is_deleted"      json:"-"`
	CreatedAt      time.Time     `bson:"created_at"      json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updated_at"      json:"updatedAt"`
}
