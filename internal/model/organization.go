package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Address is embedded in organizations and users.
type Address struct {
	Line1      string `bson:"line1,omitempty"       json:"line1,omitempty"`
	Line2      string `bson:"line2,omitempty"       json:"line2,omitempty"`
	City       string `bson:"city,omitempty"        json:"city,omitempty"`
	State      string `bson:"state,omitempty"       json:"state,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty"     json:"country,omitempty"`
}

// Organization is the billing tenant. It always owns exactly one Stripe
// customer and at most one active Stripe subscription. PlanSnapshot is the
// plan as it was at subscription time; refund math reads the snapshot so that
// later plan edits cannot change what an existing subscriber is owed.
type Organization struct {
	ID                   bson.ObjectID     `bson:"_id,omitempty"            json:"id"`
	Name                 string            `bson:"name"                     json:"name"`
	Address              Address           `bson:"address"                  json:"address"`
	PrimaryAdminID       bson.ObjectID     `bson:"primary_admin,omitempty"  json:"primaryAdmin,omitempty"`
	CreatedByID          bson.ObjectID     `bson:"created_by,omitempty"     json:"createdBy,omitempty"`
	PlanID               bson.ObjectID     `bson:"plan_id,omitempty"        json:"planId,omitempty"`
	PlanSnapshot         *SubscriptionPlan `bson:"plan_snapshot,omitempty"  json:"-"`
	BilledAmount         float64           `bson:"billed_amount"            json:"-"`
	StripeCustomerID     string            `bson:"stripe_customer_id"       json:"-"`
	StripeSubscriptionID string            `bson:"stripe_subscription_id"   json:"-"`
	CreatedAt            time.Time         `bson:"created_at"               json:"createdAt"`
	UpdatedAt            time.Time         `bson:"updated_at"               json:"updatedAt"`
}
