// Package token holds the withdrawal token entity and its status machine.
package token

import (
	"time"

	"github.com/google/uuid"
)

// Status represents a position in the token lifecycle.
type Status string

const (
	// StatusActive is the initial, redeemable state.
	StatusActive Status = "ACTIVE"
	// StatusUsed is terminal: the token was successfully redeemed.
	StatusUsed Status = "USED"
	// StatusExpired is terminal: the token outlived its TTL unredeemed.
	StatusExpired Status = "EXPIRED"
)

// Token is a withdrawal token row. The plaintext token string is never a
// field here — only its salted, peppered hash is persisted.
type Token struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    int64
	TokenHash []byte
	Salt      []byte
	Prefix    string
	Status    Status
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsRedeemable reports whether t can still transition to USED, given the
// current instant. A token past its expiry is never redeemable even if its
// persisted status still reads ACTIVE (it simply hasn't been swept yet).
func (t *Token) IsRedeemable(now time.Time) bool {
	return t.Status == StatusActive && now.Before(t.ExpiresAt)
}

// MarkUsed transitions t to USED at the given instant. Callers are expected
// to have already enforced the optimistic status='ACTIVE' guard at the
// storage layer; this method only updates the in-memory projection.
func (t *Token) MarkUsed(at time.Time) {
	t.Status = StatusUsed
	t.UsedAt = &at
}

// MarkExpired transitions t to EXPIRED. Used for the side-effect write
// mentioned in the redeem algorithm when an ACTIVE row is observed past its
// expires_at.
func (t *Token) MarkExpired() {
	t.Status = StatusExpired
}
