package usecase

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/taskport/taskport-api/internal/model"
)

var humanCodePattern = regexp.MustCompile(`^([A-Z]{2})(\d{2})(\d{2})$`)

func TestHumanCodeShape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := newHumanCode()

		parts := humanCodePattern.FindStringSubmatch(code)
		if parts == nil {
			t.Fatalf("code %q does not match the expected shape", code)
		}

		for _, part := range parts[2:] {
			n, err := strconv.Atoi(part)
			if err != nil {
				t.Fatalf("code %q: %v", code, err)
			}
			if n < 19 || n > 98 {
				t.Fatalf("code %q: number %d out of range", code, n)
			}
		}
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	issuedAt := time.Now()

	first := digest("XA9834", issuedAt)
	second := digest("XA9834", issuedAt)

	if first != second {
		t.Fatalf("same inputs produced different digests: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected a 64-char hex digest, got %d chars", len(first))
	}
	if first == digest("XA9834", issuedAt.Add(time.Millisecond)) {
		t.Fatalf("digest ignored the issue timestamp")
	}
	if first == digest("XB9834", issuedAt) {
		t.Fatalf("digest ignored the human code")
	}
}

func TestIssueSetsCalendarDayExpiry(t *testing.T) {
	codes := NewCodeUsecase(newFakeCodeRepo())

	before := time.Now()
	code, err := codes.Issue(context.Background(), bson.NewObjectID(), model.CodeKindAccount, nil)
	if err != nil {
		t.Fatal(err)
	}
	after := time.Now()

	if code.ExpiresAt.Before(before.AddDate(0, 0, 1)) || code.ExpiresAt.After(after.AddDate(0, 0, 1)) {
		t.Fatalf("expected expiry one calendar day out, got %v", code.ExpiresAt)
	}
	if code.HumanCode == "" || code.MachineCode == "" {
		t.Fatalf("expected both code forms, got human=%q machine=%q", code.HumanCode, code.MachineCode)
	}
}

func TestConsumeAcceptsEitherForm(t *testing.T) {
	repo := newFakeCodeRepo()
	codes := NewCodeUsecase(repo)
	ctx := context.Background()
	userID := bson.NewObjectID()

	byHuman, err := codes.Issue(ctx, userID, model.CodeKindAccount, nil)
	if err != nil {
		t.Fatal(err)
	}
	byMachine, err := codes.Issue(ctx, userID, model.CodeKindPassword, bson.M{"new_email": "next@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	consumed, err := codes.Consume(ctx, byHuman.HumanCode, model.CodeKindAccount)
	if err != nil {
		t.Fatalf("consume by human code: %v", err)
	}
	if consumed.UserID != userID {
		t.Fatalf("consumed code belongs to %v, want %v", consumed.UserID, userID)
	}

	consumed, err = codes.Consume(ctx, byMachine.MachineCode, model.CodeKindPassword)
	if err != nil {
		t.Fatalf("consume by machine code: %v", err)
	}
	if consumed.Payload["new_email"] != "next@example.com" {
		t.Fatalf("payload lost on consumption: %v", consumed.Payload)
	}
}

func TestConsumeRejectsWrongKindAndReuse(t *testing.T) {
	codes := NewCodeUsecase(newFakeCodeRepo())
	ctx := context.Background()

	code, err := codes.Issue(ctx, bson.NewObjectID(), model.CodeKindAccount, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := codes.Consume(ctx, code.HumanCode, model.CodeKindPassword); err != ErrCodeInvalid {
		t.Fatalf("expected ErrCodeInvalid for wrong kind, got %v", err)
	}
	if _, err := codes.Consume(ctx, code.HumanCode, model.CodeKindAccount); err != nil {
		t.Fatal(err)
	}
	if _, err := codes.Consume(ctx, code.HumanCode, model.CodeKindAccount); err != ErrCodeInvalid {
		t.Fatalf("expected ErrCodeInvalid on reuse, got %v", err)
	}
}

func TestConcurrentConsumeHasOneWinner(t *testing.T) {
	codes := NewCodeUsecase(newFakeCodeRepo())
	ctx := context.Background()

	code, err := codes.Issue(ctx, bson.NewObjectID(), model.CodeKindAccount, nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := codes.Consume(ctx, code.HumanCode, model.CodeKindAccount); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful consumption, got %d", wins)
	}
}
