package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Verification code kinds.
const (
	CodeKindPassword      = "password"      // password reset
	CodeKindAccount       = "account"       // account activation
	CodeKindTwoFactorAuth = "twofactorauth" // second factor at login
	CodeKindEmail         = "email"         // email-change confirmation
)

// VerificationCode is a short-lived, single-use code. HumanCode is the short
// string meant for manual entry; MachineCode is the digest embedded in links.
// Either one works as the lookup key. A code is valid only while IsUsed is
// false and ExpiresAt is in the future; consumption marks it used atomically.
type VerificationCode struct {
	ID          bson.ObjectID `bson:"_id,omitempty"     json:"id"`
	UserID      bson.ObjectID `bson:"user_id"           json:"userId"`
	Kind        string        `bson:"kind"              json:"kind"`
	MachineCode string        `bson:"machine_code"      json:"-"`
	HumanCode   string        `bson:"human_code"        json:"-"`
	ExpiresAt   time.Time     `bson:"expires_at"        json:"expiresAt"`
	IsUsed      bool          `bson:"is_used"           json:"isUsed"`
	Payload     bson.M        `bson:"payload,omitempty" json:"-"`
	CreatedAt   time.Time     `bson:"created_at"        json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updated_at"        json:"updatedAt"`
}
