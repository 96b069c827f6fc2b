// Package identifiers persists the login identifier attached to each account.
// The schema allows exactly one identifier per account.
package identifiers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/dbx"
)

// Repository describes identifier persistence.
type Repository interface {
	Insert(ctx context.Context, ulid, accountULID, identifier string) error
	// Update renames identifier ulid of accountULID; it fails with
	// common.ErrSchema when the identifier is not attached to that account.
	Update(ctx context.Context, ulid, accountULID, identifier string) error

	// CheckOwner fails with common.ErrSchema unless identifier ulid belongs
	// to accountULID.
	CheckOwner(ctx context.Context, ulid, accountULID string) error
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, ulid, accountULID, identifier string) error {
	query := `INSERT INTO identifiers (ulid, account_ulid, identifier) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, ulid, accountULID, identifier)
	return dbx.Wrap("insert identifier", err)
}

func (r *SQLiteRepository) Update(ctx context.Context, ulid, accountULID, identifier string) error {
	query := `UPDATE identifiers SET identifier = ?, updated_at = CURRENT_TIMESTAMP
		WHERE ulid = ? AND account_ulid = ?`
	res, err := r.db.ExecContext(ctx, query, identifier, ulid, accountULID)
	if err != nil {
		return dbx.Wrap("update identifier", err)
	}
	return dbx.ExpectOne("update identifier "+ulid, res)
}

func (r *SQLiteRepository) CheckOwner(ctx context.Context, ulid, accountULID string) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM identifiers WHERE ulid = ? AND account_ulid = ?`, ulid, accountULID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: identifier %s does not belong to account %s", common.ErrSchema, ulid, accountULID)
	}
	return dbx.Wrap("check identifier owner", err)
}
