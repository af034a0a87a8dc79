// Package ledger is the Postgres-backed implementation of
// ports.LedgerRepository.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	domainledger "github.com/cashbridge/tokenvault/internal/domain/ledger"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mpostgres"
)

const tableName = "transactions"

// Repository is the Postgres implementation of ports.LedgerRepository.
type Repository struct {
	conn *mpostgres.Connection
}

// NewRepository returns a Repository bound to conn.
func NewRepository(conn *mpostgres.Connection) *Repository {
	return &Repository{conn: conn}
}

var _ ports.LedgerRepository = (*Repository)(nil)

// Insert writes a ledger row inside tx. The unique index on token_id
// enforces I5 (at most one ledger row per token); a violation surfaces as a
// Postgres error the caller can detect with the token package's
// IsUniqueViolation.
func (r *Repository) Insert(ctx context.Context, tx ports.Tx, t *domainledger.Transaction) error {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return fmt.Errorf("ledger.Insert: tx is not *sql.Tx")
	}

	_, err := sqlTx.ExecContext(ctx, `
		INSERT INTO `+tableName+`
			(id, account_id, token_id, type, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AccountID, t.TokenID, string(t.Type), t.Amount, string(t.Status), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}

	return nil
}

// AverageSuccessfulAmount returns the mean amount of successful ledger
// entries for accountID, used by the risk context gatherer.
func (r *Repository) AverageSuccessfulAmount(ctx context.Context, accountID uuid.UUID) (float64, bool, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return 0, false, err
	}

	var (
		avg   sql.NullFloat64
		count int
	)

	row := db.QueryRowContext(ctx, `
		SELECT AVG(amount), COUNT(*) FROM `+tableName+`
		WHERE account_id = $1 AND status = 'SUCCESS'`, accountID)

	if err := row.Scan(&avg, &count); err != nil {
		return 0, false, fmt.Errorf("average successful amount: %w", err)
	}

	if count == 0 || !avg.Valid {
		return 0, false, nil
	}

	return avg.Float64, true, nil
}
