package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskport/taskport-api/internal/model"
)

func TestSessionTokenDerivation(t *testing.T) {
	at := time.Now()

	first := sessionToken("user-a", at)
	if first != sessionToken("user-a", at) {
		t.Fatalf("same inputs produced different tokens")
	}
	if len(first) != 64 {
		t.Fatalf("expected a 64-char hex token, got %d chars", len(first))
	}
	if first == sessionToken("user-b", at) {
		t.Fatalf("token ignored the user id")
	}
	if first == sessionToken("user-a", at.Add(time.Millisecond)) {
		t.Fatalf("token ignored the creation timestamp")
	}
}

func TestCreateSessionRecordsLastLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	sessions := NewSessionUsecase(newFakeSessionRepo(), userRepo)
	ctx := context.Background()

	user, err := userRepo.CreateUser(ctx, &model.User{
		Email:  "owner@example.com",
		Status: model.UserStatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}

	session, err := sessions.Create(ctx, CreateSessionParams{
		User:         user,
		AuthProvider: model.AuthProviderTaskport,
		IPAddress:    "10.0.0.1",
		UserAgent:    "test-agent",
	})
	if err != nil {
		t.Fatal(err)
	}
	if session.Token == "" || session.Status != model.SessionStatusActive {
		t.Fatalf("unexpected session %+v", session)
	}

	stored, err := userRepo.GetUser(ctx, user.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if stored.LastLogin.IsZero() {
		t.Fatalf("expected last login to be stamped")
	}
}

func TestCreateSessionKeepsPresetToken(t *testing.T) {
	userRepo := newFakeUserRepo()
	sessions := NewSessionUsecase(newFakeSessionRepo(), userRepo)
	ctx := context.Background()

	user, err := userRepo.CreateUser(ctx, &model.User{
		Email:  "owner@example.com",
		Status: model.UserStatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}

	session, err := sessions.Create(ctx, CreateSessionParams{
		User:         user,
		AuthProvider: model.AuthProviderGoogle,
		PresetToken:  "provider-issued-token",
	})
	if err != nil {
		t.Fatal(err)
	}
	if session.Token != "provider-issued-token" {
		t.Fatalf("expected the preset token to be stored, got %q", session.Token)
	}

	_, resolved, err := sessions.Resolve(ctx, "provider-issued-token")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved the wrong user")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	sessions := NewSessionUsecase(newFakeSessionRepo(), newFakeUserRepo())

	if _, _, err := sessions.Resolve(context.Background(), "no-such-token"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpireOthersKeepsCurrentSession(t *testing.T) {
	userRepo := newFakeUserRepo()
	sessions := NewSessionUsecase(newFakeSessionRepo(), userRepo)
	ctx := context.Background()

	user, err := userRepo.CreateUser(ctx, &model.User{
		Email:  "owner@example.com",
		Status: model.UserStatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}

	var tokens []string
	for i := 0; i < 3; i++ {
		// Creation timestamps are millisecond-grained; keep tokens distinct.
		time.Sleep(2 * time.Millisecond)

		session, err := sessions.Create(ctx, CreateSessionParams{User: user})
		if err != nil {
			t.Fatal(err)
		}
		tokens = append(tokens, session.Token)
	}

	if err := sessions.ExpireOthers(ctx, user.ID.Hex(), tokens[0]); err != nil {
		t.Fatal(err)
	}

	active, err := sessions.List(ctx, user.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Token != tokens[0] {
		t.Fatalf("expected only the kept session to survive, got %d sessions", len(active))
	}
}
