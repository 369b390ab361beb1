// Package dbx holds the database plumbing shared by the repositories: the
// DBTX handle they are written against, dialect rebinding and the
// transaction helper the store uses for its multi-statement mutations.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what a repository needs from a handle. *sql.DB, *sql.Tx and the
// rebinding wrapper all satisfy it, so the same repository code runs inside
// and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction. Every statement fn issues through
// tx commits together, or none does: an error or panic from fn rolls back
// (the panic is re-raised), otherwise the commit error is returned.
//
// The store relies on this for sequences such as "delete the grants, then
// the memory" that readers must never see half-applied:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := tx.ExecContext(ctx, `DELETE FROM permissions WHERE memory_id = ?`, id); err != nil {
//	        return err
//	    }
//	    _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
