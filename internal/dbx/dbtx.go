// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and error wrapping into
// the storage taxonomy.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
// Begin and commit failures are reported as common.ErrIO.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE accounts SET ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", common.ErrIO, err)
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
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("%w: commit tx: %w", common.ErrIO, cerr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// Wrap tags a database error with common.ErrSchema and the failed operation.
// nil stays nil; sql.ErrNoRows becomes common.ErrorNotFound; context errors
// are passed through with the operation name only.
func Wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %s: %w", common.ErrIO, op, err)
	default:
		return fmt.Errorf("%w: failed to %s: %w", common.ErrSchema, op, err)
	}
}

// ExpectOne checks that the statement behind res changed exactly one row.
// Any other count is common.ErrSchema: the row the caller addressed is gone
// or does not belong where the caller said it does.
func ExpectOne(op string, res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return Wrap(op+": get rows affected", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: %s: wrong rows affected count: %d", common.ErrSchema, op, ra)
	}
	return nil
}
