// Package repomanager vends the SQLite-backed repositories bound to a DBTX,
// so services can rebind every repository to the transaction they run in.
package repomanager

import (
	"github.com/dmitrijs2005/jasmify/internal/dbx"
	"github.com/dmitrijs2005/jasmify/internal/repositories/accounts"
	"github.com/dmitrijs2005/jasmify/internal/repositories/categories"
	"github.com/dmitrijs2005/jasmify/internal/repositories/identifiers"
	"github.com/dmitrijs2005/jasmify/internal/repositories/passwords"
)

type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Identifiers(db dbx.DBTX) identifiers.Repository
	Categories(db dbx.DBTX) categories.Repository
	Passwords(db dbx.DBTX) passwords.Repository
}

// SQLiteRepositoryManager vends SQLite-backed repository implementations.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Identifiers(db dbx.DBTX) identifiers.Repository {
	return identifiers.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Passwords(db dbx.DBTX) passwords.Repository {
	return passwords.NewSQLiteRepository(db)
}
