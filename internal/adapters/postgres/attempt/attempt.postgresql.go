// Package attempt is the Postgres-backed implementation of
// ports.AttemptRepository.
package attempt

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	domainattempt "github.com/cashbridge/tokenvault/internal/domain/attempt"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mpostgres"
)

const tableName = "redemption_attempts"

// Repository is the Postgres implementation of ports.AttemptRepository.
type Repository struct {
	conn *mpostgres.Connection
}

// NewRepository returns a Repository bound to conn.
func NewRepository(conn *mpostgres.Connection) *Repository {
	return &Repository{conn: conn}
}

var _ ports.AttemptRepository = (*Repository)(nil)

// execer is satisfied by both *sql.Tx and a plain dbresolver.DB, letting
// Insert run either inside the redemption transaction or standalone for
// risk-rejected attempts.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert writes an attempt row. When tx is non-nil it runs inside that
// transaction (the SUCCESS path); otherwise it runs standalone against the
// primary pool.
func (r *Repository) Insert(ctx context.Context, tx ports.Tx, a *domainattempt.Attempt) error {
	var (
		exec execer
		err  error
	)

	if tx != nil {
		sqlTx, ok := tx.(*sql.Tx)
		if !ok {
			return fmt.Errorf("attempt.Insert: tx is not *sql.Tx")
		}

		exec = sqlTx
	} else {
		db, dbErr := r.conn.DB(ctx)
		if dbErr != nil {
			return dbErr
		}

		exec = db
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO `+tableName+`
			(id, token_id, agent_id, result, reasons, last_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.TokenID, a.AgentID, string(a.Result), pq.Array(a.Reasons), metadataIP(a.Metadata), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	return nil
}

func metadataIP(metadata map[string]any) sql.NullString {
	ip, ok := metadata["ip"].(string)
	if !ok || ip == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: ip, Valid: true}
}

// CountFailedSince counts non-SUCCESS attempts for accountID's tokens since
// since.
func (r *Repository) CountFailedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var count int

	row := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM `+tableName+` ra
		JOIN tokens t ON t.id = ra.token_id
		WHERE t.account_id = $1 AND ra.result != 'SUCCESS' AND ra.created_at > $2`,
		accountID, since)

	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count failed attempts: %w", err)
	}

	return count, nil
}

// LastSuccessfulIP returns metadata.ip from the most recent SUCCESS attempt
// for accountID. Although the full metadata lives in the decoupled metadata
// store (see SPEC_FULL.md §3), this reads the local last_ip column: a
// denormalized copy of metadata.ip written by Insert purely for this query,
// avoiding a Mongo round trip on every risk evaluation.
func (r *Repository) LastSuccessfulIP(ctx context.Context, accountID uuid.UUID) (string, bool, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return "", false, err
	}

	var ip sql.NullString

	row := db.QueryRowContext(ctx, `
		SELECT ra.last_ip
		FROM `+tableName+` ra
		JOIN tokens t ON t.id = ra.token_id
		WHERE t.account_id = $1 AND ra.result = 'SUCCESS'
		ORDER BY ra.created_at DESC
		LIMIT 1`, accountID)

	if err := row.Scan(&ip); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}

		return "", false, fmt.Errorf("last successful ip: %w", err)
	}

	if !ip.Valid || ip.String == "" {
		return "", false, nil
	}

	return ip.String, true, nil
}
