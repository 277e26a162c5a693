package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// CodeUsecase issues and redeems single-use verification codes.
type CodeUsecase interface {
	// Issue creates a code of the given kind for the user. The payload rides
	// along until consumption and carries flow-specific state such as a
	// pending email address.
	Issue(ctx context.Context, userID bson.ObjectID, kind string, payload bson.M) (*model.VerificationCode, error)

	// Consume redeems a code by its human or machine form. Exactly one of
	// any number of concurrent attempts succeeds.
	Consume(ctx context.Context, code, kind string) (*model.VerificationCode, error)
}

var ErrCodeInvalid = errors.New("verification code is invalid or expired")

type codeUsecase struct {
	codeRepo repository.CodeRepository
}

// NewCodeUsecase creates the verification code usecase.
func NewCodeUsecase(codeRepo repository.CodeRepository) CodeUsecase {
	return &codeUsecase{codeRepo: codeRepo}
}

func (u *codeUsecase) Issue(
	ctx context.Context,
	userID bson.ObjectID,
	kind string,
	payload bson.M,
) (*model.VerificationCode, error) {
	now := time.Now()
	humanCode := newHumanCode()

	return u.codeRepo.CreateCode(ctx, &model.VerificationCode{
		UserID:      userID,
		Kind:        kind,
		HumanCode:   humanCode,
		MachineCode: digest(humanCode, now),
		// Calendar-day expiry, so the window stretches or shrinks by an hour
		// across DST transitions.
		ExpiresAt: now.AddDate(0, 0, 1),
		Payload:   payload,
	})
}

func (u *codeUsecase) Consume(ctx context.Context, code, kind string) (*model.VerificationCode, error) {
	consumed, err := u.codeRepo.ConsumeCode(ctx, code, kind)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCodeInvalid
		}

		return nil, err
	}

	return consumed, nil
}

// newHumanCode builds a short code of two uppercase letters followed by two
// two-digit numbers, e.g. "XA9834".
func newHumanCode() string {
	letters := [2]byte{
		byte('A' + rand.IntN(26)),
		byte('A' + rand.IntN(26)),
	}

	return fmt.Sprintf("%s%d%d", letters[:], 19+rand.IntN(80), 19+rand.IntN(80))
}

// digest derives the link-embeddable form of a code from the human code and
// the issue timestamp.
func digest(humanCode string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(humanCode + strconv.FormatInt(issuedAt.UnixMilli(), 10)))
	return hex.EncodeToString(sum[:])
}
