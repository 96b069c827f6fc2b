// Package passwords persists encrypted password rows.
//
// The rows of one identifier ordered by ascending id form its positional
// password list; ids are AUTOINCREMENT and never reused, so a slot keeps its
// id across edits.
package passwords

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/dbx"
	"github.com/dmitrijs2005/jasmify/internal/models"
)

// Repository describes password persistence.
type Repository interface {
	// Insert stores a sealed password and returns its row id.
	Insert(ctx context.Context, identifierULID, encryptedValue, nonce string) (int64, error)

	// ListByIdentifier returns the rows of an identifier ordered by id.
	ListByIdentifier(ctx context.Context, identifierULID string) ([]models.Password, error)

	// Update replaces the sealed value of row id of identifierULID and bumps
	// updated_at. A row of another identifier is never touched.
	Update(ctx context.Context, id int64, identifierULID, encryptedValue, nonce string) error

	// DeleteByID removes row id of identifierULID.
	DeleteByID(ctx context.Context, id int64, identifierULID string) error
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, identifierULID, encryptedValue, nonce string) (int64, error) {
	query := `INSERT INTO passwords (identifier_ulid, encrypted_value, nonce) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, identifierULID, encryptedValue, nonce)
	if err != nil {
		return 0, dbx.Wrap("insert password", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, dbx.Wrap("get last insert id", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListByIdentifier(ctx context.Context, identifierULID string) ([]models.Password, error) {
	query := `SELECT id, identifier_ulid, encrypted_value, nonce FROM passwords WHERE identifier_ulid = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, identifierULID)
	if err != nil {
		return nil, dbx.Wrap("select passwords", err)
	}
	defer rows.Close()

	result := make([]models.Password, 0)
	for rows.Next() {
		var p models.Password
		if err := rows.Scan(&p.ID, &p.IdentifierULID, &p.EncryptedValue, &p.Nonce); err != nil {
			return nil, dbx.Wrap("scan password", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap("iterate passwords", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, identifierULID, encryptedValue, nonce string) error {
	query := `UPDATE passwords SET encrypted_value = ?, nonce = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND identifier_ulid = ?`
	res, err := r.db.ExecContext(ctx, query, encryptedValue, nonce, id, identifierULID)
	if err != nil {
		return dbx.Wrap("update password", err)
	}
	return dbx.ExpectOne(fmt.Sprintf("update password %d", id), res)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64, identifierULID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM passwords WHERE id = ? AND identifier_ulid = ?`, id, identifierULID)
	if err != nil {
		return dbx.Wrap("delete password", err)
	}
	return dbx.ExpectOne(fmt.Sprintf("delete password %d", id), res)
}
