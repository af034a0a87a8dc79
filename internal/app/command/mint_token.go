// Package command holds the mint and redeem use cases: the Token Service
// of spec.md §4.2, orchestrating the domain primitives against the
// repository ports.
package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// maxMintAttempts bounds the retry loop on token_hash collision, per
// spec.md §4.2.1 step 5.
const maxMintAttempts = 3

// MintUseCase implements generateWithdrawalToken from spec.md §4.2.1.
type MintUseCase struct {
	Tokens ports.TokenRepository
	Pepper string
	TTL    time.Duration
	Logger mlog.Logger
}

// MintInput is the validated request to mint a token.
type MintInput struct {
	AccountID uuid.UUID
	Amount    int64
}

// MintOutput is returned to the caller; Plaintext is visible exactly once
// and must never be logged, cached, or persisted.
type MintOutput struct {
	ID        uuid.UUID
	Plaintext string
	Amount    int64
	ExpiresAt time.Time
}

// Mint validates the amount and mints a fresh token, retrying internally on
// a token_hash collision.
func (uc *MintUseCase) Mint(ctx context.Context, in MintInput) (*MintOutput, error) {
	if in.Amount < 1 {
		return nil, apperr.ValidateBusinessError(apperr.ErrInvalidAmount, "token")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(uc.TTL)

	var lastErr error

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		plaintext, err := domaintoken.DrawPlaintext()
		if err != nil {
			return nil, apperr.ValidateInternalError(err)
		}

		salt, err := domaintoken.DrawSalt()
		if err != nil {
			return nil, apperr.ValidateInternalError(err)
		}

		hash := domaintoken.Hash(uc.Pepper, plaintext.String(), salt)

		t := &domaintoken.Token{
			ID:        uuid.New(),
			AccountID: in.AccountID,
			Amount:    in.Amount,
			TokenHash: hash,
			Salt:      salt,
			Prefix:    plaintext.Prefix,
			Status:    domaintoken.StatusActive,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}

		if err := uc.Tokens.Insert(ctx, t); err != nil {
			if errors.Is(err, ports.ErrDuplicateTokenHash) {
				lastErr = err
				continue
			}

			return nil, apperr.ValidateInternalError(err)
		}

		return &MintOutput{
			ID:        t.ID,
			Plaintext: plaintext.String(),
			Amount:    t.Amount,
			ExpiresAt: t.ExpiresAt,
		}, nil
	}

	uc.Logger.Errorf("mint exhausted after %d attempts: %v", maxMintAttempts, lastErr)

	return nil, apperr.ValidateBusinessError(apperr.ErrMintExhausted, "token")
}
