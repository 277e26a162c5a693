package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscription plan status values.
const (
	PlanStatusActive   = "active"
	PlanStatusInactive = "inactive"
)

// Plan billing intervals.
const (
	PlanDurationMonthly = "monthly"
	PlanDurationYearly  = "yearly"
)

// SubscriptionPlan is a purchasable plan. Pricing is immutable once an
// organization subscribes: subscribers hold a snapshot, so editing a plan
// never changes what an existing subscriber paid or is refunded.
type SubscriptionPlan struct {
	ID                 bson.ObjectID `bson:"_id,omitempty"  json:"id"`
	Name               string        `bson:"name"           json:"name"`
	Description        string        `bson:"description"    json:"description"`
	Price              float64       `bson:"price"          json:"price"`
	Duration           string        `bson:"duration"       json:"duration"`
	MaxNumberOfMembers int           `bson:"max_members"    json:"maxNumberOfMembers"`
	Features           []string      `bson:"features"       json:"features,omitempty"`
	IsMostPopular      bool          `bson:"is_most_popular" json:"isMostPopular"`
	StripePlanID       string        `bson:"stripe_plan_id" json:"-"`
	Status             string        `bson:"status"         json:"status"`
	CreatedAt          time.Time     `bson:"created_at"     json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at"     json:"updatedAt"`
}

// PeriodDays returns the fixed day count used for per-diem refund math:
// 30 for monthly and 365 for yearly plans. This is a deliberate approximation
// of the billing period, not the calendar-exact length.
func (p SubscriptionPlan) PeriodDays() int {
	if p.Duration == PlanDurationYearly {
		return 365
	}
	return 30
}
