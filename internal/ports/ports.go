// Package ports declares the interfaces internal/app depends on. Concrete
// implementations live under internal/adapters/*.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cashbridge/tokenvault/internal/domain/attempt"
	"github.com/cashbridge/tokenvault/internal/domain/ledger"
	"github.com/cashbridge/tokenvault/internal/domain/token"
)

// ErrDuplicateTokenHash is returned by TokenRepository.Insert when the
// unique index on token_hash rejects a collision (spec.md I3). Mint retries
// internally on this error.
var ErrDuplicateTokenHash = errors.New("duplicate token hash")

// TokenRepository persists and queries Token rows. Every mutating method
// that matters for redemption correctness is documented with the
// concurrency guarantee it must uphold (see spec.md §5).
type TokenRepository interface {
	// Insert writes a new ACTIVE token row. Returns an error wrapping
	// ErrDuplicateTokenHash when token_hash collides with an existing row.
	Insert(ctx context.Context, t *token.Token) error

	// FindActiveCandidatesByPrefix returns every row with the given prefix
	// that is currently ACTIVE and unexpired, without locking.
	FindActiveCandidatesByPrefix(ctx context.Context, prefix string, now time.Time) ([]*token.Token, error)

	// LockForRedemption re-reads a single row with FOR UPDATE inside the
	// caller's transaction. Must be called only within a transaction began
	// via WithinTx.
	LockForRedemption(ctx context.Context, tx Tx, id uuid.UUID) (*token.Token, error)

	// MarkUsedIfActive performs the optimistic status='ACTIVE' guarded
	// update to USED, returning the number of rows affected (0 or 1).
	MarkUsedIfActive(ctx context.Context, tx Tx, id uuid.UUID, usedAt time.Time) (int64, error)

	// MarkExpired performs the side-effect ACTIVE-past-expiry sweep write.
	MarkExpired(ctx context.Context, tx Tx, id uuid.UUID) error

	// CountCreatedSince counts tokens minted for accountID since since,
	// used by the risk context gatherer's velocity signal.
	CountCreatedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}

// LedgerRepository persists the insert-only withdrawal ledger.
type LedgerRepository interface {
	// Insert writes a ledger row inside tx. Returns an error satisfying
	// IsUniqueViolation if a row already exists for the token (I5).
	Insert(ctx context.Context, tx Tx, txn *ledger.Transaction) error

	// AverageSuccessfulAmount returns the mean amount of successful ledger
	// entries for accountID, or (0, false) if none exist.
	AverageSuccessfulAmount(ctx context.Context, accountID uuid.UUID) (float64, bool, error)
}

// AttemptRepository persists redemption evidence rows.
type AttemptRepository interface {
	// Insert writes an attempt row. When called inside a transaction
	// (the SUCCESS path), tx is non-nil; every other outcome, including
	// risk-stopped attempts, is written standalone with a nil tx, outside
	// any token transaction.
	Insert(ctx context.Context, tx Tx, a *attempt.Attempt) error

	// CountFailedSince counts non-SUCCESS attempts for accountID's tokens
	// since since, used by the risk context gatherer.
	CountFailedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)

	// LastSuccessfulIP returns metadata.ip from the most recent SUCCESS
	// attempt for accountID, or ("", false) if none.
	LastSuccessfulIP(ctx context.Context, accountID uuid.UUID) (string, bool, error)
}

// MetadataRepository persists the free-form attempt metadata document
// decoupled from the relational attempt row (see SPEC_FULL.md §3).
type MetadataRepository interface {
	SaveAttemptMetadata(ctx context.Context, attemptID uuid.UUID, metadata map[string]any) error
}

// Tx is an opaque, backend-specific transaction handle. Adapters type-assert
// it back to their concrete *sql.Tx; application code only ever threads it
// through.
type Tx interface{}

// UnitOfWork begins and finalizes the single transaction a redemption runs
// inside, at isolation ≥ REPEATABLE READ per spec.md §4.2.2.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// RateLimiter enforces the sliding-window policy described in spec.md §4.5.
type RateLimiter interface {
	// Allow evaluates one request against key's bucket. On success it
	// returns the updated remaining/limit/reset values and a remover func
	// usable for skipSuccessfulRequests. On a limited request it returns
	// allowed=false with the same fields populated for the 429 headers.
	Allow(ctx context.Context, key string, limit int, window time.Duration, requestID string) (result RateLimitResult, err error)
}

// RateLimitResult carries everything needed to set X-RateLimit-* headers.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Remove     func(ctx context.Context) error
}

// EventPublisher emits domain events for external collaborators.
type EventPublisher interface {
	PublishWithdrawalCompleted(ctx context.Context, event WithdrawalCompleted) error
}

// WithdrawalCompleted is the event body described in SPEC_FULL.md §4.7.
type WithdrawalCompleted struct {
	TokenID       uuid.UUID
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	Amount        int64
	RedeemedAt    time.Time
}
