package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// OrganizationUsecase covers reading and editing organizations.
type OrganizationUsecase interface {
	Get(ctx context.Context, id string) (*model.Organization, error)

	// ListWithMemberCounts returns every organization together with its
	// member count. Reserved for super admins.
	ListWithMemberCounts(ctx context.Context) ([]*OrganizationSummary, error)

	Update(ctx context.Context, id string, params repository.UpdateOrganizationParams) (*model.Organization, error)
}

// OrganizationSummary pairs an organization with its member count.
type OrganizationSummary struct {
	Organization *model.Organization `json:"organization"`
	MemberCount  int64               `json:"memberCount"`
}

type organizationUsecase struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationUsecase creates the organization usecase.
func NewOrganizationUsecase(
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
) OrganizationUsecase {
	return &organizationUsecase{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

func (u *organizationUsecase) Get(ctx context.Context, id string) (*model.Organization, error) {
	org, err := u.orgRepo.GetOrganization(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrganizationNotFound
		}

		return nil, err
	}

	return org, nil
}

func (u *organizationUsecase) ListWithMemberCounts(ctx context.Context) ([]*OrganizationSummary, error) {
	orgs, err := u.orgRepo.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := u.userRepo.CountUsersByOrganization(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*OrganizationSummary, 0, len(orgs))
	for _, org := range orgs {
		summaries = append(summaries, &OrganizationSummary{
			Organization: org,
			MemberCount:  counts[org.ID.Hex()],
		})
	}

	return summaries, nil
}

func (u *organizationUsecase) Update(
	ctx context.Context,
	id string,
	params repository.UpdateOrganizationParams,
) (*model.Organization, error) {
	org, err := u.orgRepo.UpdateOrganization(ctx, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrganizationNotFound
		}

		return nil, err
	}

	return org, nil
}
