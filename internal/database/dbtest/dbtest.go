// Package dbtest opens a migrated throwaway database for repository and
// service tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/jasmify/internal/database"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/stretchr/testify/require"
)

// Open creates a fresh database under t.TempDir() and closes it on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Setup(context.Background(), t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Count returns SELECT COUNT(*) of table.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
