package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/security"
)

// UserUsecase covers a user's own account: profile edits, password changes,
// and the email-change confirmation flow.
type UserUsecase interface {
	Get(ctx context.Context, id string) (*model.User, error)

	// UpdateProfile edits the caller's own profile fields. A changed email
	// does not take effect here: a confirmation code is mailed to the new
	// address and the email switches only when it is redeemed.
	UpdateProfile(ctx context.Context, user *model.User, params UpdateProfileParams) (*model.User, error)

	// ChangePassword verifies the current password before replacing it, then
	// expires every other session of the user.
	ChangePassword(ctx context.Context, user *model.User, params ChangePasswordParams) error

	// ConfirmEmailChange redeems an email-change code and switches the
	// user's email to the address stored with the code.
	ConfirmEmailChange(ctx context.Context, code string) (*model.User, error)
}

// UpdateProfileParams defines the self-editable profile fields.
type UpdateProfileParams struct {
	Name           *string
	Email          *string
	Mobile         *string
	CountryISDCode *string
	Address        *model.Address
	EmailService   *bool
	SMSService     *bool
}

// ChangePasswordParams defines the parameters for a password change.
type ChangePasswordParams struct {
	CurrentPassword string
	NewPassword     string
	CurrentToken    string
}

type userUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	codes       CodeUsecase
	mail        mailer.Sender
	cfg         *config.Config
}

// NewUserUsecase creates the user usecase.
func NewUserUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	codes CodeUsecase,
	mail mailer.Sender,
	cfg *config.Config,
) UserUsecase {
	return &userUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		codes:       codes,
		mail:        mail,
		cfg:         cfg,
	}
}

func (u *userUsecase) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateProfile(
	ctx context.Context,
	user *model.User,
	params UpdateProfileParams,
) (*model.User, error) {
	if params.Email != nil && *params.Email != user.Email {
		code, err := u.codes.Issue(ctx, user.ID, model.CodeKindEmail, bson.M{
			"new_email": *params.Email,
		})
		if err != nil {
			return nil, err
		}

		// Confirmation goes to the address being claimed, not the current
		// one.
		if err := u.mail.Send(mailer.EmailChangeEmail(*params.Email, u.cfg.ClientHost, code.MachineCode)); err != nil {
			return nil, err
		}
	}

	// An email-only edit persists nothing until the code is redeemed.
	if params.Name == nil && params.Mobile == nil && params.CountryISDCode == nil &&
		params.Address == nil && params.EmailService == nil && params.SMSService == nil {
		return user, nil
	}

	updated, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		Name:           params.Name,
		Mobile:         params.Mobile,
		CountryISDCode: params.CountryISDCode,
		Address:        params.Address,
		EmailService:   params.EmailService,
		SMSService:     params.SMSService,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return updated, nil
}

func (u *userUsecase) ChangePassword(ctx context.Context, user *model.User, params ChangePasswordParams) error {
	if ok, err := security.VerifyPassword(params.CurrentPassword, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := security.HashPassword(params.NewPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return u.sessionRepo.ExpireOtherSessions(ctx, user.ID.Hex(), params.CurrentToken)
}

func (u *userUsecase) ConfirmEmailChange(ctx context.Context, code string) (*model.User, error) {
	consumed, err := u.codes.Consume(ctx, code, model.CodeKindEmail)
	if err != nil {
		return nil, err
	}

	newEmail, ok := consumed.Payload["new_email"].(string)
	if !ok || newEmail == "" {
		return nil, ErrCodeInvalid
	}

	user, err := u.userRepo.UpdateUser(ctx, consumed.UserID.Hex(), repository.UpdateUserParams{
		Email: &newEmail,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}
