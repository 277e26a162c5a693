package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// SessionUsecase manages login sessions and resolves bearer tokens back to
// their users.
type SessionUsecase interface {
	// Create opens a session for the user and records the login time.
	Create(ctx context.Context, params CreateSessionParams) (*model.Session, error)

	// Resolve maps a bearer token to its active session and user. It returns
	// ErrSessionNotFound when no active session carries the token.
	Resolve(ctx context.Context, token string) (*model.Session, *model.User, error)

	// List returns the user's active sessions.
	List(ctx context.Context, userID string) ([]*model.Session, error)

	// Expire ends the session carrying the token.
	Expire(ctx context.Context, token string) error

	// ExpireOthers ends every active session of the user except the one
	// carrying the token.
	ExpireOthers(ctx context.Context, userID, exceptToken string) error
}

// CreateSessionParams defines the parameters for opening a session.
// PresetToken, when set, is stored as the session token instead of a derived
// one; social logins reuse the provider's token that way.
type CreateSessionParams struct {
	User         *model.User
	AuthProvider string
	IPAddress    string
	UserAgent    string
	PresetToken  string
}

var ErrSessionNotFound = errors.New("session not found")

type sessionUsecase struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

// NewSessionUsecase creates the session usecase.
func NewSessionUsecase(sessionRepo repository.SessionRepository, userRepo repository.UserRepository) SessionUsecase {
	return &sessionUsecase{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

func (u *sessionUsecase) Create(ctx context.Context, params CreateSessionParams) (*model.Session, error) {
	userID := params.User.ID.Hex()

	token := params.PresetToken
	if token == "" {
		token = sessionToken(userID, time.Now())
	}

	session, err := u.sessionRepo.CreateSession(ctx, &model.Session{
		UserID:       params.User.ID,
		Token:        token,
		Status:       model.SessionStatusActive,
		AuthProvider: params.AuthProvider,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.UpdateLastLogin(ctx, userID); err != nil {
		return nil, err
	}

	return session, nil
}

func (u *sessionUsecase) Resolve(ctx context.Context, token string) (*model.Session, *model.User, error) {
	session, err := u.sessionRepo.GetActiveSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrSessionNotFound
		}

		return nil, nil, err
	}

	user, err := u.userRepo.GetUser(ctx, session.UserID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrSessionNotFound
		}

		return nil, nil, err
	}

	return session, user, nil
}

func (u *sessionUsecase) List(ctx context.Context, userID string) ([]*model.Session, error) {
	return u.sessionRepo.ListActiveSessions(ctx, userID)
}

func (u *sessionUsecase) Expire(ctx context.Context, token string) error {
	if err := u.sessionRepo.ExpireSession(ctx, token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrSessionNotFound
		}

		return err
	}

	return nil
}

func (u *sessionUsecase) ExpireOthers(ctx context.Context, userID, exceptToken string) error {
	return u.sessionRepo.ExpireOtherSessions(ctx, userID, exceptToken)
}

// sessionToken derives the opaque bearer token from the user ID and the
// session creation timestamp.
func sessionToken(userID string, createdAt time.Time) string {
	sum := sha256.Sum256([]byte(userID + strconv.FormatInt(createdAt.UnixMilli(), 10)))
	return hex.EncodeToString(sum[:])
}
