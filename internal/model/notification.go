package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Notification kinds.
const (
	NotificationContactInvitation  = "contact_invitation"
	NotificationPlanExpireDate     = "plan_expire_date"
	NotificationNewPlan            = "new_plan"
	NotificationPlanRenewed        = "plan_renewed"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationWelcomeMessage     = "welcome_message"
)

// Notification is a stored in-app notification. Persisting one also publishes
// it to the recipient's subject so connected clients see it live.
type Notification struct {
	ID             bson.ObjectID `bson:"_id,omitempty"       json:"id"`
	SenderID       bson.ObjectID `bson:"sender_id,omitempty" json:"senderId,omitempty"`
	RecipientID    bson.ObjectID `bson:"recipient_id"        json:"recipientId"`
	RecipientEmail string        `bson:"recipient_email"     json:"recipientEmail"`
	Kind           string        `bson:"kind"                json:"kind"`
	Payload        bson.M        `bson:"payload,omitempty"   json:"payload,omitempty"`
	IsDeleted      bool          `bson:"is_deleted"          json:"-"`
	NotifiedAt     time.Time     `bson:"notified_at"         json:"notifiedAt"`
}
