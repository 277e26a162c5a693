package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/repository"
)

// BillingUsecase orchestrates subscriptions against the payment processor.
// Every mutation talks to the processor first and persists locally only
// after it confirms, so local state never claims a subscription the
// processor does not have.
type BillingUsecase interface {
	// ChangePlan subscribes the organization to the plan, creating the
	// processor-side customer and subscription on first use. CardToken is
	// required only when the organization has no customer yet.
	ChangePlan(ctx context.Context, params ChangePlanParams) (*model.Organization, error)

	// Cancel ends the subscription. Immediate cancellation refunds the
	// unused remainder of the period pro rata; otherwise the subscription
	// runs out at the period end.
	Cancel(ctx context.Context, orgID string, immediate bool) (*CancelResult, error)

	AddCard(ctx context.Context, orgID, cardToken string) (*payment.Card, error)
	ListCards(ctx context.Context, orgID string) ([]*payment.Card, error)
	UpdateCard(ctx context.Context, orgID string, update payment.CardUpdate) (*payment.Card, error)
	SetDefaultCard(ctx context.Context, orgID, cardID string) error

	ListInvoices(ctx context.Context, orgID string, limit int) ([]*payment.Invoice, error)
	UpcomingInvoice(ctx context.Context, orgID string) (*payment.Invoice, error)
}

// ChangePlanParams defines the parameters for a plan change.
type ChangePlanParams struct {
	OrganizationID string
	PlanID         string
	CardToken      string
}

// CancelResult reports what a cancellation did.
type CancelResult struct {
	RefundedAmount float64   `json:"refundedAmount"`
	EndsAt         time.Time `json:"endsAt"`
}

var (
	ErrPlanNotFound          = errors.New("subscription plan not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrNoSubscription        = errors.New("organization has no subscription")
	ErrNoPaymentMethod       = errors.New("organization has no payment method on file")
	ErrTooManyMembersForPlan = errors.New("organization has more members than the plan allows")
)

type billingUsecase struct {
	orgRepo   repository.OrganizationRepository
	planRepo  repository.PlanRepository
	userRepo  repository.UserRepository
	processor payment.Processor
	logger    *zerolog.Logger
}

// NewBillingUsecase creates the billing usecase.
func NewBillingUsecase(
	orgRepo repository.OrganizationRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	processor payment.Processor,
	logger *zerolog.Logger,
) BillingUsecase {
	return &billingUsecase{
		orgRepo:   orgRepo,
		planRepo:  planRepo,
		userRepo:  userRepo,
		processor: processor,
		logger:    logger,
	}
}

func (u *billingUsecase) ChangePlan(ctx context.Context, params ChangePlanParams) (*model.Organization, error) {
	org, err := u.getOrganization(ctx, params.OrganizationID)
	if err != nil {
		return nil, err
	}

	plan, err := u.planRepo.GetActivePlan(ctx, params.PlanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlanNotFound
		}

		return nil, err
	}

	// The organization's current members must fit the target plan.
	occupied, err := u.userRepo.CountUsers(ctx, org.ID.Hex(), []string{
		model.UserStatusActive,
		model.UserStatusInvited,
	})
	if err != nil {
		return nil, err
	}
	if occupied > int64(plan.MaxNumberOfMembers) {
		return nil, ErrTooManyMembersForPlan
	}

	setParams := repository.SetSubscriptionParams{
		PlanID:       plan.ID,
		PlanSnapshot: plan,
		BilledAmount: &plan.Price,
	}

	if org.StripeSubscriptionID == "" {
		customerID := org.StripeCustomerID
		if customerID == "" {
			if params.CardToken == "" {
				return nil, ErrNoPaymentMethod
			}

			admin, err := u.userRepo.GetUser(ctx, org.PrimaryAdminID.Hex())
			if err != nil {
				return nil, err
			}

			customer, err := u.processor.CreateCustomer(ctx, admin.Email, params.CardToken)
			if err != nil {
				return nil, err
			}
			customerID = customer.ID
			setParams.StripeCustomerID = &customerID
		}

		subscription, err := u.processor.CreateSubscription(ctx, customerID, plan.StripePlanID)
		if err != nil {
			return nil, err
		}
		setParams.StripeSubscriptionID = &subscription.ID
	} else {
		_, err := u.processor.ChangeSubscriptionPlan(
			ctx,
			org.StripeSubscriptionID,
			plan.StripePlanID,
			uuid.NewString(),
		)
		if err != nil {
			return nil, err
		}
	}

	if err := u.orgRepo.SetSubscription(ctx, org.ID.Hex(), setParams); err != nil {
		return nil, err
	}

	return u.orgRepo.GetOrganization(ctx, org.ID.Hex())
}

func (u *billingUsecase) Cancel(ctx context.Context, orgID string, immediate bool) (*CancelResult, error) {
	org, err := u.getOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.StripeSubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	if !immediate {
		subscription, err := u.processor.CancelSubscriptionAtPeriodEnd(ctx, org.StripeSubscriptionID, uuid.NewString())
		if err != nil {
			return nil, err
		}

		return &CancelResult{EndsAt: subscription.CurrentPeriodEnd}, nil
	}

	subscription, err := u.processor.CancelSubscriptionNow(ctx, org.StripeSubscriptionID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	refunded, err := u.refundRemainder(ctx, org, subscription.CurrentPeriodEnd)
	if err != nil {
		return nil, err
	}

	var zero float64
	var noSub string
	if err := u.orgRepo.SetSubscription(ctx, org.ID.Hex(), repository.SetSubscriptionParams{
		PlanID:               bson.ObjectID{},
		PlanSnapshot:         nil,
		BilledAmount:         &zero,
		StripeSubscriptionID: &noSub,
	}); err != nil {
		return nil, err
	}

	return &CancelResult{RefundedAmount: refunded, EndsAt: time.Now()}, nil
}

// refundRemainder refunds the unused portion of the current period against
// the latest charge of the canceled subscription. The refund is computed
// from the plan snapshot taken at subscription time.
func (u *billingUsecase) refundRemainder(
	ctx context.Context,
	org *model.Organization,
	periodEnd time.Time,
) (float64, error) {
	if org.PlanSnapshot == nil {
		return 0, nil
	}

	amount := refundAmount(org.PlanSnapshot, periodEnd, time.Now())
	if amount <= 0 {
		return 0, nil
	}

	invoices, err := u.processor.ListInvoices(ctx, org.StripeCustomerID, org.StripeSubscriptionID, 1)
	if err != nil {
		return 0, err
	}
	if len(invoices) == 0 || invoices[0].ChargeID == "" {
		u.logger.Warn().Str("organization_id", org.ID.Hex()).Msg("no charge found to refund against")
		return 0, nil
	}

	refund, err := u.processor.Refund(ctx, invoices[0].ChargeID, int64(amount*100), uuid.NewString())
	if err != nil {
		return 0, err
	}

	u.logger.Info().
		Str("organization_id", org.ID.Hex()).
		Str("refund_id", refund.ID).
		Float64("amount", amount).
		Msg("refunded unused subscription remainder")

	return amount, nil
}

func (u *billingUsecase) AddCard(ctx context.Context, orgID, cardToken string) (*payment.Card, error) {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return u.processor.AddCard(ctx, org.StripeCustomerID, cardToken)
}

func (u *billingUsecase) ListCards(ctx context.Context, orgID string) ([]*payment.Card, error) {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return u.processor.ListCards(ctx, org.StripeCustomerID)
}

func (u *billingUsecase) UpdateCard(ctx context.Context, orgID string, update payment.CardUpdate) (*payment.Card, error) {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return u.processor.UpdateCard(ctx, org.StripeCustomerID, update)
}

func (u *billingUsecase) SetDefaultCard(ctx context.Context, orgID, cardID string) error {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return err
	}

	return u.processor.SetDefaultSource(ctx, org.StripeCustomerID, cardID)
}

func (u *billingUsecase) ListInvoices(ctx context.Context, orgID string, limit int) ([]*payment.Invoice, error) {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return u.processor.ListInvoices(ctx, org.StripeCustomerID, "", limit)
}

func (u *billingUsecase) UpcomingInvoice(ctx context.Context, orgID string) (*payment.Invoice, error) {
	org, err := u.customerOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return u.processor.UpcomingInvoice(ctx, org.StripeCustomerID)
}

func (u *billingUsecase) getOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	org, err := u.orgRepo.GetOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrganizationNotFound
		}

		return nil, err
	}

	return org, nil
}

func (u *billingUsecase) customerOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	org, err := u.getOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.StripeCustomerID == "" {
		return nil, ErrNoPaymentMethod
	}

	return org, nil
}

// refundAmount computes the pro-rata refund for the unused remainder of the
// current period. Days left are rounded to whole days and the period length
// is the plan's fixed day count, 30 for monthly and 365 for yearly.
func refundAmount(snapshot *model.SubscriptionPlan, periodEnd, now time.Time) float64 {
	daysLeft := math.Round(periodEnd.Sub(now).Hours() / 24)
	if daysLeft <= 0 {
		return 0
	}

	return math.Round(snapshot.Price / float64(snapshot.PeriodDays()) * daysLeft)
}
