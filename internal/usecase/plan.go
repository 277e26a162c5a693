package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/repository"
)

// PlanUsecase manages the subscription plan catalog.
type PlanUsecase interface {
	// Create registers the plan with the payment processor first, then
	// persists it with the processor's plan reference.
	Create(ctx context.Context, plan *model.SubscriptionPlan) (*model.SubscriptionPlan, error)

	Get(ctx context.Context, id string) (*model.SubscriptionPlan, error)

	// List returns plans, optionally filtered to one status. Non-admin
	// callers only ever see active plans.
	List(ctx context.Context, status string) ([]*model.SubscriptionPlan, error)

	// Update edits a plan's presentation and status. Price and duration are
	// immutable; repricing means creating a new plan.
	Update(ctx context.Context, id string, params repository.UpdatePlanParams) (*model.SubscriptionPlan, error)
}

type planUsecase struct {
	planRepo  repository.PlanRepository
	processor payment.Processor
}

// NewPlanUsecase creates the plan usecase.
func NewPlanUsecase(planRepo repository.PlanRepository, processor payment.Processor) PlanUsecase {
	return &planUsecase{
		planRepo:  planRepo,
		processor: processor,
	}
}

func (u *planUsecase) Create(ctx context.Context, plan *model.SubscriptionPlan) (*model.SubscriptionPlan, error) {
	stripePlanID, err := u.processor.CreatePlan(ctx, payment.PlanSpec{
		Name:     plan.Name,
		Price:    plan.Price,
		Duration: plan.Duration,
	})
	if err != nil {
		return nil, err
	}

	plan.StripePlanID = stripePlanID
	if plan.Status == "" {
		plan.Status = model.PlanStatusActive
	}

	return u.planRepo.CreatePlan(ctx, plan)
}

func (u *planUsecase) Get(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	plan, err := u.planRepo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlanNotFound
		}

		return nil, err
	}

	return plan, nil
}

func (u *planUsecase) List(ctx context.Context, status string) ([]*model.SubscriptionPlan, error) {
	return u.planRepo.ListPlans(ctx, status)
}

func (u *planUsecase) Update(
	ctx context.Context,
	id string,
	params repository.UpdatePlanParams,
) (*model.SubscriptionPlan, error) {
	plan, err := u.planRepo.UpdatePlan(ctx, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlanNotFound
		}

		return nil, err
	}

	return plan, nil
}
