// Package token is the Postgres-backed implementation of ports.TokenRepository.
package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mpostgres"
)

const tableName = "tokens"

// uniqueViolationCode is the Postgres SQLSTATE for a unique-constraint
// violation, used to detect token_hash collisions at mint time (I3).
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Repository is the Postgres implementation of ports.TokenRepository.
type Repository struct {
	conn *mpostgres.Connection
}

// NewRepository returns a Repository bound to conn.
func NewRepository(conn *mpostgres.Connection) *Repository {
	return &Repository{conn: conn}
}

var _ ports.TokenRepository = (*Repository)(nil)

// model is the row shape tokens is persisted as.
type model struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    int64
	TokenHash []byte
	Salt      []byte
	Prefix    string
	Status    string
	ExpiresAt time.Time
	UsedAt    sql.NullTime
	CreatedAt time.Time
}

func fromEntity(t *domaintoken.Token) *model {
	m := &model{
		ID:        t.ID,
		AccountID: t.AccountID,
		Amount:    t.Amount,
		TokenHash: t.TokenHash,
		Salt:      t.Salt,
		Prefix:    t.Prefix,
		Status:    string(t.Status),
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}

	if t.UsedAt != nil {
		m.UsedAt = sql.NullTime{Time: *t.UsedAt, Valid: true}
	}

	return m
}

func (m *model) toEntity() *domaintoken.Token {
	t := &domaintoken.Token{
		ID:        m.ID,
		AccountID: m.AccountID,
		Amount:    m.Amount,
		TokenHash: m.TokenHash,
		Salt:      m.Salt,
		Prefix:    m.Prefix,
		Status:    domaintoken.Status(m.Status),
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}

	if m.UsedAt.Valid {
		used := m.UsedAt.Time
		t.UsedAt = &used
	}

	return t
}

// Insert writes a new ACTIVE token row.
func (r *Repository) Insert(ctx context.Context, t *domaintoken.Token) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}

	m := fromEntity(t)

	_, err = db.ExecContext(ctx, `
		INSERT INTO `+tableName+`
			(id, account_id, amount, token_hash, salt, prefix, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.AccountID, m.Amount, m.TokenHash, m.Salt, m.Prefix, m.Status, m.ExpiresAt, m.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ports.ErrDuplicateTokenHash, err)
		}

		return fmt.Errorf("insert token: %w", err)
	}

	return nil
}

// FindActiveCandidatesByPrefix returns every ACTIVE, unexpired row for prefix.
func (r *Repository) FindActiveCandidatesByPrefix(ctx context.Context, prefix string, now time.Time) ([]*domaintoken.Token, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.Select("id", "account_id", "amount", "token_hash", "salt", "prefix", "status", "expires_at", "used_at", "created_at").
		From(tableName).
		Where(squirrel.Eq{"prefix": prefix}).
		Where(squirrel.Eq{"status": string(domaintoken.StatusActive)}).
		Where(squirrel.Gt{"expires_at": now}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	// Read from the primary: a lagging replica could miss a just-minted token.
	rows, err := db.PrimaryDBs()[0].QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []*domaintoken.Token

	for rows.Next() {
		var m model

		if err := rows.Scan(&m.ID, &m.AccountID, &m.Amount, &m.TokenHash, &m.Salt, &m.Prefix, &m.Status, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		out = append(out, m.toEntity())
	}

	return out, rows.Err()
}

// LockForRedemption re-reads a single row with FOR UPDATE inside tx.
func (r *Repository) LockForRedemption(ctx context.Context, tx ports.Tx, id uuid.UUID) (*domaintoken.Token, error) {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("token.LockForRedemption: tx is not *sql.Tx")
	}

	var m model

	row := sqlTx.QueryRowContext(ctx, `
		SELECT id, account_id, amount, token_hash, salt, prefix, status, expires_at, used_at, created_at
		FROM `+tableName+`
		WHERE id = $1
		FOR UPDATE`, id)

	if err := row.Scan(&m.ID, &m.AccountID, &m.Amount, &m.TokenHash, &m.Salt, &m.Prefix, &m.Status, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("lock token: %w", err)
	}

	return m.toEntity(), nil
}

// MarkUsedIfActive performs the optimistic status='ACTIVE' guarded update.
func (r *Repository) MarkUsedIfActive(ctx context.Context, tx ports.Tx, id uuid.UUID, usedAt time.Time) (int64, error) {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return 0, fmt.Errorf("token.MarkUsedIfActive: tx is not *sql.Tx")
	}

	result, err := sqlTx.ExecContext(ctx, `
		UPDATE `+tableName+`
		SET status = 'USED', used_at = $1
		WHERE id = $2 AND status = 'ACTIVE'`, usedAt, id)
	if err != nil {
		return 0, fmt.Errorf("mark token used: %w", err)
	}

	return result.RowsAffected()
}

// MarkExpired performs the side-effect ACTIVE-past-expiry sweep write.
func (r *Repository) MarkExpired(ctx context.Context, tx ports.Tx, id uuid.UUID) error {
	sqlTx, ok := tx.(*sql.Tx)
	if !ok {
		return fmt.Errorf("token.MarkExpired: tx is not *sql.Tx")
	}

	_, err := sqlTx.ExecContext(ctx, `
		UPDATE `+tableName+`
		SET status = 'EXPIRED'
		WHERE id = $1 AND status = 'ACTIVE'`, id)
	if err != nil {
		return fmt.Errorf("mark token expired: %w", err)
	}

	return nil
}

// CountCreatedSince counts tokens minted for accountID since since.
func (r *Repository) CountCreatedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var count int

	row := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM `+tableName+`
		WHERE account_id = $1 AND created_at > $2`, accountID, since)

	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count tokens since: %w", err)
	}

	return count, nil
}
