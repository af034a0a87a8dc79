// Package txn implements ports.UnitOfWork: the single database transaction
// a redemption runs inside, at isolation >= REPEATABLE READ per spec.md
// §4.2.2.
package txn

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mpostgres"
)

// UnitOfWork begins transactions against the primary connection.
type UnitOfWork struct {
	conn *mpostgres.Connection
}

// New returns a UnitOfWork bound to conn.
func New(conn *mpostgres.Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// WithinTx runs fn inside a REPEATABLE READ transaction against the primary
// pool. Cancellation of ctx before commit aborts the in-flight work via
// context propagation into the underlying driver; after Commit returns the
// transaction is durable regardless of subsequent cancellation.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	db, err := u.conn.DB(ctx)
	if err != nil {
		return err
	}

	// Begin on the primary *sql.DB so fn receives the *sql.Tx the adapters
	// type-assert to.
	sqlTx, err := db.PrimaryDBs()[0].BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(sqlTx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}

		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
