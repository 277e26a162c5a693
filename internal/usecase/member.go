package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// MemberUsecase manages an organization's membership roster: inviting,
// updating, and deactivating members within the subscribed plan's capacity.
type MemberUsecase interface {
	// Invite creates invited users for the given emails and mails each one a
	// registration code. Active and already-invited members both count
	// against the plan's member capacity; filling the last seat succeeds,
	// exceeding it rejects the whole batch.
	Invite(ctx context.Context, params InviteMembersParams) ([]*model.User, error)

	// List returns the organization's members, optionally filtered by
	// status.
	List(ctx context.Context, organizationID string, statuses []string) ([]*model.User, error)

	// Update edits a member's profile and role flags. The super-admin flag
	// cannot be granted through any update.
	Update(ctx context.Context, id string, params repository.UpdateUserParams) (*model.User, error)

	// Deactivate moves an active member to deactivated and expires their
	// sessions.
	Deactivate(ctx context.Context, id string) (*model.User, error)

	// Reactivate moves a deactivated member back to active.
	Reactivate(ctx context.Context, id string) (*model.User, error)
}

// InviteMembersParams defines the parameters for inviting members.
type InviteMembersParams struct {
	OrganizationID string
	InvitedBy      *model.User
	Emails         []string
}

var (
	ErrMemberLimitExceeded = errors.New("invitation exceeds the plan's member limit")
	ErrUserNotFound        = errors.New("user not found")
)

type memberUsecase struct {
	userRepo    repository.UserRepository
	orgRepo     repository.OrganizationRepository
	sessionRepo repository.SessionRepository
	codes       CodeUsecase
	mail        mailer.Sender
	cfg         *config.Config
	logger      *zerolog.Logger
}

// NewMemberUsecase creates the member usecase.
func NewMemberUsecase(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	sessionRepo repository.SessionRepository,
	codes CodeUsecase,
	mail mailer.Sender,
	cfg *config.Config,
	logger *zerolog.Logger,
) MemberUsecase {
	return &memberUsecase{
		userRepo:    userRepo,
		orgRepo:     orgRepo,
		sessionRepo: sessionRepo,
		codes:       codes,
		mail:        mail,
		cfg:         cfg,
		logger:      logger,
	}
}

func (u *memberUsecase) Invite(ctx context.Context, params InviteMembersParams) ([]*model.User, error) {
	org, err := u.orgRepo.GetOrganization(ctx, params.OrganizationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrganizationNotFound
		}

		return nil, err
	}
	if org.PlanSnapshot == nil {
		return nil, ErrNoSubscription
	}

	occupied, err := u.userRepo.CountUsers(ctx, org.ID.Hex(), []string{
		model.UserStatusActive,
		model.UserStatusInvited,
	})
	if err != nil {
		return nil, err
	}
	if occupied+int64(len(params.Emails)) > int64(org.PlanSnapshot.MaxNumberOfMembers) {
		return nil, fmt.Errorf("%w of %d", ErrMemberLimitExceeded, org.PlanSnapshot.MaxNumberOfMembers)
	}

	invited := make([]*model.User, 0, len(params.Emails))
	for _, email := range params.Emails {
		invited = append(invited, &model.User{
			OrganizationID: org.ID,
			Email:          email,
			CreatedByID:    params.InvitedBy.ID,
			Status:         model.UserStatusInvited,
		})
	}

	users, err := u.userRepo.CreateUsers(ctx, invited)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	for _, user := range users {
		code, err := u.codes.Issue(ctx, user.ID, model.CodeKindAccount, bson.M{
			"organization_id": org.ID,
		})
		if err != nil {
			return nil, err
		}

		// Invitation email is transactional and bypasses the opt-in filter.
		if err := u.mail.Send(mailer.InvitationEmail(user.Email, org.Name, u.cfg.ClientHost, code.MachineCode)); err != nil {
			u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send invitation email")
		}
	}

	return users, nil
}

func (u *memberUsecase) List(ctx context.Context, organizationID string, statuses []string) ([]*model.User, error) {
	return u.userRepo.ListUsers(ctx, repository.FilterUsersParams{
		OrganizationID: &organizationID,
		Statuses:       statuses,
	})
}

func (u *memberUsecase) Update(ctx context.Context, id string, params repository.UpdateUserParams) (*model.User, error) {
	user, err := u.userRepo.UpdateUser(ctx, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *memberUsecase) Deactivate(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.UpdateUserStatus(ctx, id, model.UserStatusActive, model.UserStatusDeactivated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	if err := u.sessionRepo.ExpireOtherSessions(ctx, id, ""); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *memberUsecase) Reactivate(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.UpdateUserStatus(ctx, id, model.UserStatusDeactivated, model.UserStatusActive)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}
