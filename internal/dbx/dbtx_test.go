package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "dbx.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT UNIQUE);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('first')`)
		require.NoError(t, e)
		_, e = tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('first')`)
		return Wrap("insert duplicate", e)
	})
	require.ErrorIs(t, err, common.ErrSchema)
	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.ErrorIs(t, err, common.ErrIO, "begin should fail when DB is closed")
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("x", nil))
	assert.ErrorIs(t, Wrap("get", sql.ErrNoRows), common.ErrorNotFound)
	assert.ErrorIs(t, Wrap("get", fmt.Errorf("scan: %w", sql.ErrNoRows)), common.ErrorNotFound)

	err := Wrap("slow", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, common.ErrSchema)

	assert.ErrorIs(t, Wrap("conn", sql.ErrConnDone), common.ErrIO)

	err = Wrap("insert account", errors.New("constraint failed"))
	assert.ErrorIs(t, err, common.ErrSchema)
	assert.Contains(t, err.Error(), "insert account")
}

type rowsAffected struct {
	sql.Result
	n   int64
	err error
}

func (r rowsAffected) RowsAffected() (int64, error) { return r.n, r.err }

func TestExpectOne(t *testing.T) {
	assert.NoError(t, ExpectOne("update", rowsAffected{n: 1}))

	err := ExpectOne("update password", rowsAffected{n: 0})
	assert.ErrorIs(t, err, common.ErrSchema)
	assert.Contains(t, err.Error(), "update password")

	assert.ErrorIs(t, ExpectOne("delete", rowsAffected{n: 2}), common.ErrSchema)
	assert.ErrorIs(t, ExpectOne("delete", rowsAffected{err: sql.ErrConnDone}), common.ErrIO)
}
