// Package ledger holds the immutable withdrawal ledger entity.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates the ledger entry kinds this service writes.
// Only WITHDRAWAL exists today; the type column is kept for forward
// compatibility with other movement kinds an external ledger might add.
type TransactionType string

// TransactionStatus enumerates ledger entry outcomes. Only SUCCESS is ever
// written — a failed redemption never reaches the ledger insert step.
type TransactionStatus string

const (
	TypeWithdrawal TransactionType = "WITHDRAWAL"

	StatusSuccess TransactionStatus = "SUCCESS"
)

// Transaction is a single, insert-only withdrawal ledger row. At most one
// Transaction exists per TokenID (enforced by a unique index), and rows are
// never updated or deleted after insert.
type Transaction struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	TokenID   uuid.UUID
	Type      TransactionType
	Amount    int64
	Status    TransactionStatus
	CreatedAt time.Time
}

// NewWithdrawal builds the single ledger row a successful redemption writes.
func NewWithdrawal(id, accountID, tokenID uuid.UUID, amount int64, at time.Time) *Transaction {
	return &Transaction{
		ID:        id,
		AccountID: accountID,
		TokenID:   tokenID,
		Type:      TypeWithdrawal,
		Amount:    amount,
		Status:    StatusSuccess,
		CreatedAt: at,
	}
}
