// Package database opens the SQLite store that backs the vault.
//
// The store lives at <workdir>/DB/db.sqlite. Connections are opened through
// the pure-Go modernc.org/sqlite driver with WAL journalling,
// synchronous=NORMAL, enforced foreign keys and IMMEDIATE write
// transactions. Embedded goose migrations are applied only when the database
// file did not exist before Setup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/database/migrations"
	"github.com/dmitrijs2005/jasmify/internal/filex"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	urlScheme  = "sqlite://"
)

// pragmas are applied by the driver to every new connection.
var pragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_pragma=synchronous(NORMAL)",
	"_pragma=busy_timeout(5000)",
	"_txlock=immediate",
}

// URL returns the canonical sqlite://<absolute-dir>/db.sqlite form for dir,
// with path separators normalised to forward slashes.
func URL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return urlScheme + filepath.ToSlash(abs) + "/" + common.DatabaseFile, nil
}

// DSN converts a sqlite:// URL into a modernc.org/sqlite data source name.
func DSN(url string) string {
	return strings.TrimPrefix(url, urlScheme) + "?" + strings.Join(pragmas, "&")
}

// Open opens a pool for url and verifies it with a ping.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open(driverName, DSN(url))
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", common.ErrIO, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping db: %w", common.ErrIO, err)
	}
	return db, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrSchema, err)
	}
	return nil
}

// Setup ensures <workDir>/DB exists, opens the pool and migrates a freshly
// created database. When migration fails the new file is removed so the next
// start retries from scratch.
func Setup(ctx context.Context, workDir string, logger logging.Logger) (*sql.DB, error) {
	dir, err := filex.EnsureSubDir(workDir, common.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrIO, err)
	}

	path := filepath.Join(dir, common.DatabaseFile)
	existed, err := filex.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrIO, err)
	}

	url, err := URL(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrIO, err)
	}

	db, err := Open(ctx, url)
	if err != nil {
		return nil, err
	}

	if existed {
		logger.Info(ctx, "opened database", "url", url)
		return db, nil
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(path + suffix)
		}
		return nil, err
	}

	logger.Info(ctx, "created database", "url", url)
	return db, nil
}
