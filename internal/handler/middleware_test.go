package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/usecase"
)

// fakeSessions resolves a single known token.
type fakeSessions struct {
	token   string
	session *model.Session
	user    *model.User
}

func (f *fakeSessions) Create(_ context.Context, _ usecase.CreateSessionParams) (*model.Session, error) {
	return f.session, nil
}

func (f *fakeSessions) Resolve(_ context.Context, token string) (*model.Session, *model.User, error) {
	if token != f.token {
		return nil, nil, usecase.ErrSessionNotFound
	}
	return f.session, f.user, nil
}

func (f *fakeSessions) List(_ context.Context, _ string) ([]*model.Session, error) {
	return nil, nil
}

func (f *fakeSessions) Expire(_ context.Context, _ string) error {
	return nil
}

func (f *fakeSessions) ExpireOthers(_ context.Context, _, _ string) error {
	return nil
}

func newTestAuthenticator(user *model.User) *Authenticator {
	sessions := &fakeSessions{
		token:   "good-token",
		session: &model.Session{Token: "good-token", Status: model.SessionStatusActive},
		user:    user,
	}
	return NewAuthenticator(sessions, &config.Config{PrivateKey: "shared-secret"})
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestRequireAuthMissingToken(t *testing.T) {
	auth := newTestAuthenticator(&model.User{})
	handler := auth.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	body := decodeEnvelope(t, rr)
	if body["status"] != false {
		t.Fatalf("expected status false, got %v", body["status"])
	}
	errs, _ := body["errors"].([]any)
	if len(errs) != 1 || errs[0] != "Invalid or expired authentication key" {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestRequireAuthUnknownToken(t *testing.T) {
	auth := newTestAuthenticator(&model.User{})
	handler := auth.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set(HeaderAccessCode, "stale-token")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuthAttachesUserAndSession(t *testing.T) {
	user := &model.User{Email: "ada@acme.test"}
	auth := newTestAuthenticator(user)

	var gotUser *model.User
	var gotSession *model.Session
	handler := auth.RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		gotSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set(HeaderAccessCode, "good-token")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotUser == nil || gotUser.Email != "ada@acme.test" {
		t.Fatalf("user not attached to context: %+v", gotUser)
	}
	if gotSession == nil || gotSession.Token != "good-token" {
		t.Fatalf("session not attached to context: %+v", gotSession)
	}
}

func TestRequireAuthPermissionFlags(t *testing.T) {
	tests := []struct {
		name        string
		permissions model.Permissions
		flags       []string
		wantCode    int
	}{
		{"plain user on open route", model.Permissions{}, nil, http.StatusOK},
		{"plain user on admin route", model.Permissions{}, []string{model.PermissionAccountAdmin}, http.StatusForbidden},
		{"account admin on admin route", model.Permissions{IsAccountAdmin: true}, []string{model.PermissionAccountAdmin}, http.StatusOK},
		{
			"super admin on either-flag route",
			model.Permissions{IsSuperAdmin: true},
			[]string{model.PermissionAccountAdmin, model.PermissionSuperAdmin},
			http.StatusOK,
		},
		{"account admin on super route", model.Permissions{IsAccountAdmin: true}, []string{model.PermissionSuperAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newTestAuthenticator(&model.User{Permissions: tt.permissions})
			handler := auth.RequireAuth(tt.flags...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
			req.Header.Set(HeaderAccessCode, "good-token")

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if tt.wantCode == http.StatusForbidden {
				errs, _ := decodeEnvelope(t, rr)["errors"].([]any)
				if len(errs) != 1 || errs[0] != "Permission denied" {
					t.Fatalf("unexpected errors %v", errs)
				}
			}
		})
	}
}

func TestRequirePrivateKey(t *testing.T) {
	auth := newTestAuthenticator(&model.User{})
	handler := auth.RequirePrivateKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/notification/email", nil)
	req.Header.Set(HeaderPrivateKey, "wrong")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a bad key, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/notification/email", nil)
	req.Header.Set(HeaderPrivateKey, "shared-secret")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the right key, got %d", rr.Code)
	}
}
