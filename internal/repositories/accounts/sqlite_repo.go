package accounts

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/jasmify/internal/dbx"
	"github.com/dmitrijs2005/jasmify/internal/models"
)

const summarySelect = `SELECT
		a.ulid,
		a.account_name,
		i.ulid,
		i.identifier,
		c.category_name
	FROM accounts a
	LEFT JOIN identifiers i ON a.ulid = i.account_ulid
	LEFT JOIN account_categories ac ON a.ulid = ac.account_ulid
	LEFT JOIN categories c ON ac.category_id = c.id
	WHERE 1=1`

const summaryOrder = ` ORDER BY a.ulid`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, ulid, name string) error {
	query := `INSERT INTO accounts (ulid, account_name) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, ulid, name)
	return dbx.Wrap("insert account", err)
}

func (r *SQLiteRepository) UpdateName(ctx context.Context, ulid, name string) error {
	query := `UPDATE accounts SET account_name = ?, updated_at = CURRENT_TIMESTAMP WHERE ulid = ?`
	res, err := r.db.ExecContext(ctx, query, name, ulid)
	if err != nil {
		return dbx.Wrap("update account name", err)
	}
	return dbx.ExpectOne("update account name", res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, ulid string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE ulid = ?`, ulid)
	if err != nil {
		return 0, dbx.Wrap("delete account", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.Wrap("get rows affected", err)
	}
	return ra, nil
}

func (r *SQLiteRepository) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.AccountSummary, error) {
	query, args := buildSearchQuery(criteria)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Wrap("select accounts", err)
	}
	defer rows.Close()

	result := make([]models.AccountSummary, 0)
	for rows.Next() {
		item, err := scanSummary(rows)
		if err != nil {
			return nil, dbx.Wrap("scan account", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap("iterate accounts", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetSummary(ctx context.Context, ulid string) (*models.AccountSummary, error) {
	row := r.db.QueryRowContext(ctx, summarySelect+` AND a.ulid = ?`, ulid)

	item, err := scanSummary(row)
	if err != nil {
		return nil, dbx.Wrap("get account "+ulid, err)
	}
	return &item, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, dbx.Wrap("count accounts", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner) (models.AccountSummary, error) {
	var (
		item                                 models.AccountSummary
		identifierULID, identifier, category sql.NullString
	)
	if err := s.Scan(&item.AccountULID, &item.AccountName, &identifierULID, &identifier, &category); err != nil {
		return item, err
	}
	item.IdentifierULID = identifierULID.String
	item.Identifier = identifier.String
	item.CategoryName = category.String
	return item, nil
}

// buildSearchQuery assembles the summary query with one bound LIKE clause per
// non-empty criterion.
func buildSearchQuery(c models.SearchCriteria) (string, []any) {
	var sb strings.Builder
	sb.WriteString(summarySelect)

	args := make([]any, 0, 3)
	add := func(column, value string) {
		if value == "" {
			return
		}
		sb.WriteString(" AND " + column + ` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(value)+"%")
	}

	add("a.account_name", c.AccountName)
	add("i.identifier", c.Identifier)
	add("c.category_name", c.CategoryName)

	sb.WriteString(summaryOrder)
	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
