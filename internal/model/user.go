package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User status values.
const (
	UserStatusActive      = "active"      // account is verified and usable
	UserStatusDeactivated = "deactivated" // account has been deactivated
	UserStatusPending     = "pending"     // self-registered, email not verified yet
	UserStatusInvited     = "invited"     // added by an admin, registration not completed
)

// Permission flag names used by the authorization gate.
const (
	PermissionSuperAdmin   = "isSuperAdmin"
	PermissionAccountAdmin = "isAccountAdmin"
)

// Permissions holds the role flags attached to a user.
type Permissions struct {
	IsSuperAdmin   bool `bson:"is_super_admin"   json:"isSuperAdmin"`
	IsAccountAdmin bool `bson:"is_account_admin" json:"isAccountAdmin"`
}

// Satisfies reports whether any of the given flag names is set.
// An empty flag list is satisfied by every user.
func (p Permissions) Satisfies(flags []string) bool {
	if len(flags) == 0 {
		return true
	}
	for _, flag := range flags {
		switch flag {
		case PermissionSuperAdmin:
			if p.IsSuperAdmin {
				return true
			}
		case PermissionAccountAdmin:
			if p.IsAccountAdmin {
				return true
			}
		}
	}
	return false
}

// User represents a member of an organization. Email is unique across the
// whole system, not per organization.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty"        json:"id"`
	OrganizationID   bson.ObjectID `bson:"organization_id"      json:"organizationId"`
	Name             string        `bson:"name"                 json:"name"`
	Email            string        `bson:"email"                json:"email"`
	PasswordHash     string        `bson:"password_hash"        json:"-"`
	RoleTitles       []string      `bson:"role_titles"          json:"roleTitles,omitempty"`
	Mobile           string        `bson:"mobile"               json:"mobile,omitempty"`
	CountryISDCode   string        `bson:"country_isd_code"     json:"countryIsdCode,omitempty"`
	Address          Address       `bson:"address"              json:"address"`
	EmailService     bool          `bson:"email_service"        json:"emailService"`
	SMSService       bool          `bson:"sms_service"          json:"smsService"`
	IsPolicyAccepted bool          `bson:"is_policy_accepted"   json:"isPolicyAccepted"`
	Permissions      Permissions   `bson:"permissions"          json:"permissions"`
	LastLogin        time.Time     `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedByID      bson.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	Status           string        `bson:"status"               json:"status"`
	CreatedAt        time.Time     `bson:"created_at"           json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updated_at"           json:"updatedAt"`
}
