// Package categories persists user-defined category tags and their link to
// accounts. Category names are unique; a category with no linked account is
// removed by DeleteOrphans.
package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/dbx"
)

// Repository describes category persistence.
type Repository interface {
	// Upsert creates the category if no category with that name exists.
	Upsert(ctx context.Context, name string) error

	// Link attaches an account to the category with the given name.
	Link(ctx context.Context, accountULID, name string) error

	// Relink moves an account to the category with the given name, linking it
	// if it had no category yet.
	Relink(ctx context.Context, accountULID, name string) error

	// DeleteOrphans removes categories no account refers to.
	DeleteOrphans(ctx context.Context) (int64, error)

	// Names lists all category names in alphabetical order.
	Names(ctx context.Context) ([]string, error)
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (category_name) VALUES (?)`, name)
	return dbx.Wrap("upsert category", err)
}

func (r *SQLiteRepository) Link(ctx context.Context, accountULID, name string) error {
	query := `INSERT INTO account_categories (account_ulid, category_id)
		SELECT ?, id FROM categories WHERE category_name = ?`
	res, err := r.db.ExecContext(ctx, query, accountULID, name)
	if err != nil {
		return dbx.Wrap("link category", err)
	}
	return dbx.ExpectOne(fmt.Sprintf("link category %q", name), res)
}

func (r *SQLiteRepository) Relink(ctx context.Context, accountULID, name string) error {
	query := `UPDATE account_categories
		SET category_id = (SELECT id FROM categories WHERE category_name = ?), updated_at = CURRENT_TIMESTAMP
		WHERE account_ulid = ?`
	res, err := r.db.ExecContext(ctx, query, name, accountULID)
	if err != nil {
		return dbx.Wrap("relink category", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return dbx.Wrap("get rows affected", err)
	}
	if ra == 0 {
		return r.Link(ctx, accountULID, name)
	}
	return nil
}

func (r *SQLiteRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	query := `DELETE FROM categories
		WHERE id NOT IN (SELECT DISTINCT category_id FROM account_categories)`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, dbx.Wrap("delete unused categories", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.Wrap("get rows affected", err)
	}
	return ra, nil
}

func (r *SQLiteRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_name FROM categories ORDER BY category_name`)
	if err != nil {
		return nil, dbx.Wrap("select categories", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, dbx.Wrap("scan category", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap("iterate categories", err)
	}
	return names, nil
}
