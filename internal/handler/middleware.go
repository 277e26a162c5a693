package handler

import (
	"context"
	"net/http"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/httputil"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/usecase"
)

// Header names used by the two authentication gates.
const (
	HeaderAccessCode = "access_code"
	HeaderPrivateKey = "private_key"
)

type contextKey int

const (
	userContextKey contextKey = iota
	sessionContextKey
)

// Authenticator guards routes with the session gate and the shared-secret
// gate.
type Authenticator struct {
	sessions usecase.SessionUsecase
	cfg      *config.Config
}

// NewAuthenticator creates the route guard.
func NewAuthenticator(sessions usecase.SessionUsecase, cfg *config.Config) *Authenticator {
	return &Authenticator{
		sessions: sessions,
		cfg:      cfg,
	}
}

// RequireAuth resolves the access_code header to an active session and
// attaches the user to the request context. With permission flags given, the
// user must satisfy at least one of them.
func (a *Authenticator) RequireAuth(flags ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAccessCode)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid or expired authentication key")
				return
			}

			session, user, err := a.sessions.Resolve(r.Context(), token)
			if err != nil {
				if err == usecase.ErrSessionNotFound {
					httputil.RespondError(w, http.StatusUnauthorized, "Invalid or expired authentication key")
					return
				}

				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !user.Permissions.Satisfies(flags) {
				httputil.RespondError(w, http.StatusForbidden, "Permission denied")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrivateKey guards service-to-service routes with the shared secret.
func (a *Authenticator) RequirePrivateKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderPrivateKey) != a.cfg.PrivateKey {
			httputil.RespondError(w, http.StatusForbidden, "Permission denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// SessionFromContext returns the session attached by RequireAuth.
func SessionFromContext(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}
