package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Processor is the boundary to the external payment system. Every call is
// fallible I/O; callers persist local state only after the remote call has
// succeeded.
type Processor interface {
	CreateCustomer(ctx context.Context, email, sourceToken string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	CreateSubscription(ctx context.Context, customerID, planRef string) (*Subscription, error)
	ChangeSubscriptionPlan(ctx context.Context, subscriptionID, planRef, idempotencyKey string) (*Subscription, error)
	CancelSubscriptionNow(ctx context.Context, subscriptionID, idempotencyKey string) (*Subscription, error)
	CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID, idempotencyKey string) (*Subscription, error)

	CreatePlan(ctx context.Context, spec PlanSpec) (string, error)

	AddCard(ctx context.Context, customerID, sourceToken string) (*Card, error)
	ListCards(ctx context.Context, customerID string) ([]*Card, error)
	UpdateCard(ctx context.Context, customerID string, update CardUpdate) (*Card, error)
	SetDefaultSource(ctx context.Context, customerID, cardID string) error

	ListInvoices(ctx context.Context, customerID, subscriptionID string, limit int) ([]*Invoice, error)
	UpcomingInvoice(ctx context.Context, customerID string) (*Invoice, error)

	Refund(ctx context.Context, chargeID string, amountCents int64, idempotencyKey string) (*Refund, error)
}

// Customer mirrors the subset of the processor's customer object we use.
type Customer struct {
	ID            string
	Email         string
	DefaultSource string
}

// Subscription mirrors the subset of the processor's subscription object we
// use. CurrentPeriodEnd is the unix timestamp the current billing period ends
// at; refund math reads it after an immediate cancellation.
type Subscription struct {
	ID               string
	Status           string
	CurrentPeriodEnd time.Time
	CancelAtEnd      bool
}

// PlanSpec describes a plan to register with the processor. Price is in whole
// currency units; the processor side is created in cents.
type PlanSpec struct {
	Name     string
	Price    float64
	Duration string // monthly or yearly
}

// Card mirrors the subset of the processor's card object returned to clients.
type Card struct {
	ID        string
	Name      string
	Brand     string
	Last4     string
	ExpMonth  int64
	ExpYear   int64
	IsDefault bool
}

// CardUpdate carries the editable card fields.
type CardUpdate struct {
	CardID         string
	ExpMonth       string
	ExpYear        string
	CardHolderName string
}

// InvoiceLine is one line item of an invoice.
type InvoiceLine struct {
	Description string
}

// Invoice mirrors the subset of the processor's invoice object we use.
// ChargeID links the invoice to the charge a refund is issued against.
type Invoice struct {
	Number             string
	Date               time.Time
	NextPaymentAttempt time.Time
	Lines              []InvoiceLine
	Total              int64
	ChargeID           string
}

// Refund is the processor's refund confirmation.
type Refund struct {
	ID          string
	AmountCents int64
	Status      string
}

// Error wraps a processor failure so callers can distinguish it from local
// persistence errors and inspect the processor's error code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment processor: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("payment processor: %s", e.Message)
}

// Processor error codes clients can act on.
const (
	CodeInvalidExpiryMonth  = "invalid_expiry_month"
	CodeInvalidExpiryYear   = "invalid_expiry_year"
	CodeInvoiceUpcomingNone = "invoice_upcoming_none"
)

// IsUserFixable reports whether the failure maps to a 400 the client can fix
// rather than a 500.
func IsUserFixable(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Code == CodeInvalidExpiryMonth || perr.Code == CodeInvalidExpiryYear
}
