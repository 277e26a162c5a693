package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/provider"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/security"
)

// AuthUsecase implements registration, activation, and login flows.
type AuthUsecase interface {
	// Register creates an organization with its first, pending user and
	// emails an activation code. The first user becomes the organization's
	// primary admin once activated.
	Register(ctx context.Context, params RegisterParams) (*model.User, error)

	// Activate redeems an activation code and moves the pending user to
	// active.
	Activate(ctx context.Context, code string) (*model.User, error)

	// Login checks credentials and opens a session.
	Login(ctx context.Context, params LoginParams) (*model.Session, *model.User, error)

	// SocialLogin verifies a social identity token and opens a session for
	// the existing account it maps to.
	SocialLogin(ctx context.Context, params SocialLoginParams) (*model.Session, *model.User, error)

	// Logout expires the session carrying the token.
	Logout(ctx context.Context, token string) error

	// CompleteMemberRegistration redeems an invitation code and finishes the
	// invited user's registration.
	CompleteMemberRegistration(ctx context.Context, params MemberRegistrationParams) (*model.User, error)

	// RequestPasswordReset issues a reset code and emails it.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword redeems a reset code, replaces the password, and expires
	// every session of the user.
	ResetPassword(ctx context.Context, code, newPassword string) (*model.User, error)
}

// RegisterParams defines the parameters for organization sign-up.
type RegisterParams struct {
	OrganizationName string
	Address          model.Address
	Name             string
	Email            string
	Password         string
	IsPolicyAccepted bool
}

// LoginParams defines the parameters for password login.
type LoginParams struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// SocialLoginParams defines the parameters for social login.
type SocialLoginParams struct {
	Provider  string
	Token     string
	IPAddress string
	UserAgent string
}

// MemberRegistrationParams defines the parameters for completing an invited
// member's registration.
type MemberRegistrationParams struct {
	Code     string
	Name     string
	Password string
}

var (
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountNotVerified     = errors.New("account is not verified yet")
	ErrRegistrationIncomplete = errors.New("invited registration is not completed")
	ErrAccountDeactivated     = errors.New("account is deactivated")
	ErrUnknownAuthProvider    = errors.New("unknown auth provider")
	ErrPolicyNotAccepted      = errors.New("policy must be accepted")
)

type authUsecase struct {
	userRepo     repository.UserRepository
	orgRepo      repository.OrganizationRepository
	contactRepo  repository.ContactRepository
	codes        CodeUsecase
	sessions     SessionUsecase
	notification NotificationUsecase
	mail         mailer.Sender
	providers    map[string]provider.OAuthProvider
	cfg          *config.Config
	logger       *zerolog.Logger
}

// NewAuthUsecase creates the auth usecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	contactRepo repository.ContactRepository,
	codes CodeUsecase,
	sessions SessionUsecase,
	notification NotificationUsecase,
	mail mailer.Sender,
	providers map[string]provider.OAuthProvider,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		contactRepo:  contactRepo,
		codes:        codes,
		sessions:     sessions,
		notification: notification,
		mail:         mail,
		providers:    providers,
		cfg:          cfg,
		logger:       logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if !params.IsPolicyAccepted {
		return nil, ErrPolicyNotAccepted
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	org, err := u.orgRepo.CreateOrganization(ctx, &model.Organization{
		Name:    params.OrganizationName,
		Address: params.Address,
	})
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		OrganizationID:   org.ID,
		Name:             params.Name,
		Email:            params.Email,
		PasswordHash:     passwordHash,
		IsPolicyAccepted: true,
		EmailService:     true,
		Permissions:      model.Permissions{IsAccountAdmin: true},
		Status:           model.UserStatusPending,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if err := u.orgRepo.SetAdminRefs(ctx, org.ID.Hex(), user.ID); err != nil {
		return nil, err
	}

	code, err := u.codes.Issue(ctx, user.ID, model.CodeKindAccount, nil)
	if err != nil {
		return nil, err
	}

	// Activation email is transactional and bypasses the opt-in filter.
	if err := u.mail.Send(mailer.VerificationEmail(user.Email, user.Name, code.HumanCode)); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Activate(ctx context.Context, code string) (*model.User, error) {
	consumed, err := u.codes.Consume(ctx, code, model.CodeKindAccount)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.UpdateUserStatus(
		ctx,
		consumed.UserID.Hex(),
		model.UserStatusPending,
		model.UserStatusActive,
	)
	if err != nil {
		return nil, err
	}

	u.linkContactsAndWelcome(ctx, user)

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*model.Session, *model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	if err := loginableStatus(user); err != nil {
		return nil, nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := u.sessions.Create(ctx, CreateSessionParams{
		User:         user,
		AuthProvider: model.AuthProviderTaskport,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
	})
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

func (u *authUsecase) SocialLogin(ctx context.Context, params SocialLoginParams) (*model.Session, *model.User, error) {
	oauthProvider, ok := u.providers[params.Provider]
	if !ok {
		return nil, nil, ErrUnknownAuthProvider
	}

	identity, err := oauthProvider.VerifyToken(ctx, params.Token)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := u.userRepo.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	if err := loginableStatus(user); err != nil {
		return nil, nil, err
	}

	session, err := u.sessions.Create(ctx, CreateSessionParams{
		User:         user,
		AuthProvider: params.Provider,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
		PresetToken:  params.Token,
	})
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

func (u *authUsecase) Logout(ctx context.Context, token string) error {
	return u.sessions.Expire(ctx, token)
}

func (u *authUsecase) CompleteMemberRegistration(
	ctx context.Context,
	params MemberRegistrationParams,
) (*model.User, error) {
	consumed, err := u.codes.Consume(ctx, params.Code, model.CodeKindAccount)
	if err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CompleteInvitedRegistration(
		ctx,
		consumed.UserID.Hex(),
		params.Name,
		passwordHash,
	)
	if err != nil {
		return nil, err
	}

	u.linkContactsAndWelcome(ctx, user)

	return user, nil
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	code, err := u.codes.Issue(ctx, user.ID, model.CodeKindPassword, nil)
	if err != nil {
		return err
	}

	return u.mail.Send(mailer.PasswordResetEmail(user.Email, u.cfg.ClientHost, code.MachineCode))
}

func (u *authUsecase) ResetPassword(ctx context.Context, code, newPassword string) (*model.User, error) {
	consumed, err := u.codes.Consume(ctx, code, model.CodeKindPassword)
	if err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.UpdateUser(ctx, consumed.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})
	if err != nil {
		return nil, err
	}

	// A password reset invalidates every open session.
	if err := u.sessions.ExpireOthers(ctx, user.ID.Hex(), ""); err != nil {
		return nil, err
	}

	return user, nil
}

// linkContactsAndWelcome back-fills contact references pointing at the newly
// active user and stores their welcome notification. Both are best effort.
func (u *authUsecase) linkContactsAndWelcome(ctx context.Context, user *model.User) {
	if err := u.contactRepo.LinkUserByEmail(ctx, user.Email, user.ID); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to link contacts to new user")
	}

	if _, err := u.notification.Save(ctx, &model.Notification{
		RecipientID:    user.ID,
		RecipientEmail: user.Email,
		Kind:           model.NotificationWelcomeMessage,
		Payload:        bson.M{"title": "Welcome to Taskport", "message": "Your account is ready."},
	}); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to store welcome notification")
	}
}

func loginableStatus(user *model.User) error {
	switch user.Status {
	case model.UserStatusPending:
		return ErrAccountNotVerified
	case model.UserStatusInvited:
		return ErrRegistrationIncomplete
	case model.UserStatusDeactivated:
		return ErrAccountDeactivated
	}

	return nil
}
