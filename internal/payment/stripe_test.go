package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
)

func TestCustomerFromStripe(t *testing.T) {
	got := customerFromStripe(&stripe.Customer{
		ID:            "cus_1",
		Email:         "ada@acme.test",
		DefaultSource: &stripe.PaymentSource{ID: "card_1"},
	})
	if got.ID != "cus_1" || got.Email != "ada@acme.test" || got.DefaultSource != "card_1" {
		t.Fatalf("unexpected customer %+v", got)
	}

	noSource := customerFromStripe(&stripe.Customer{ID: "cus_2"})
	if noSource.DefaultSource != "" {
		t.Fatalf("expected no default source, got %q", noSource.DefaultSource)
	}
}

func TestSubscriptionFromStripe(t *testing.T) {
	periodEnd := time.Now().Add(720 * time.Hour).Truncate(time.Second)
	got := subscriptionFromStripe(&stripe.Subscription{
		ID:                "sub_1",
		Status:            stripe.SubscriptionStatusActive,
		CurrentPeriodEnd:  periodEnd.Unix(),
		CancelAtPeriodEnd: true,
	})
	if got.ID != "sub_1" || got.Status != "active" || !got.CancelAtEnd {
		t.Fatalf("unexpected subscription %+v", got)
	}
	if !got.CurrentPeriodEnd.Equal(periodEnd) {
		t.Fatalf("period end = %v, want %v", got.CurrentPeriodEnd, periodEnd)
	}
}

func TestInvoiceFromStripe(t *testing.T) {
	created := time.Now().Truncate(time.Second)
	got := invoiceFromStripe(&stripe.Invoice{
		Number:  "INV-001",
		Created: created.Unix(),
		Total:   9900,
		Charge:  &stripe.Charge{ID: "ch_1"},
		Lines: &stripe.InvoiceLineItemList{
			Data: []*stripe.InvoiceLineItem{{Description: "Team plan"}},
		},
	})
	if got.Number != "INV-001" || got.Total != 9900 || got.ChargeID != "ch_1" {
		t.Fatalf("unexpected invoice %+v", got)
	}
	if !got.Date.Equal(created) {
		t.Fatalf("date = %v, want %v", got.Date, created)
	}
	if len(got.Lines) != 1 || got.Lines[0].Description != "Team plan" {
		t.Fatalf("unexpected lines %+v", got.Lines)
	}
	if !got.NextPaymentAttempt.IsZero() {
		t.Fatalf("expected no next payment attempt")
	}
}

func TestWrapStripeError(t *testing.T) {
	wrapped := wrapStripeError(&stripe.Error{
		Code: stripe.ErrorCodeInvalidExpiryMonth,
		Msg:  "Your card's expiration month is invalid.",
	})

	var perr *Error
	if !errors.As(wrapped, &perr) {
		t.Fatalf("expected *Error, got %T", wrapped)
	}
	if perr.Code != CodeInvalidExpiryMonth {
		t.Fatalf("code = %q, want %q", perr.Code, CodeInvalidExpiryMonth)
	}
	if !IsUserFixable(wrapped) {
		t.Fatalf("invalid expiry month should be user fixable")
	}

	plain := wrapStripeError(errors.New("connection reset"))
	if errors.As(plain, &perr); perr.Code != "" || IsUserFixable(plain) {
		t.Fatalf("plain failure must not carry a code: %+v", perr)
	}
}
