// Package services implements the vault operations on top of the
// repositories: every write runs in one transaction, and the master key is
// fetched from the KeySource for each encryption or decryption.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/cryptox"
	"github.com/dmitrijs2005/jasmify/internal/dbx"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/dmitrijs2005/jasmify/internal/models"
	"github.com/dmitrijs2005/jasmify/internal/repositories/identifiers"
	"github.com/dmitrijs2005/jasmify/internal/repositories/passwords"
	"github.com/dmitrijs2005/jasmify/internal/repositories/repomanager"
)

// KeySource returns the current master key.
type KeySource interface {
	GetKey() ([]byte, error)
}

// IDMinter returns fresh ULIDs.
type IDMinter interface {
	New() (string, error)
}

type Vault struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	keys        KeySource
	ids         IDMinter
	logger      logging.Logger
}

func NewVault(db *sql.DB, repomanager repomanager.RepositoryManager, keys KeySource, ids IDMinter, logger logging.Logger) *Vault {
	return &Vault{
		db:          db,
		repomanager: repomanager,
		keys:        keys,
		ids:         ids,
		logger:      logger.With("module", "vault"),
	}
}

func (s *Vault) seal(plaintext string) (string, string, error) {
	key, err := s.keys.GetKey()
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(key)

	return cryptox.EncryptPassword(key, plaintext)
}

func (s *Vault) open(ciphertext, nonce string) (string, error) {
	key, err := s.keys.GetKey()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	return cryptox.DecryptPassword(key, ciphertext, nonce)
}

func (s *Vault) insertPassword(ctx context.Context, repo passwords.Repository, identifierULID, plaintext string) error {
	enc, nonce, err := s.seal(plaintext)
	if err != nil {
		return err
	}
	_, err = repo.Insert(ctx, identifierULID, enc, nonce)
	return err
}

// InsertNewAccount stores a new account with its identifier, category and
// passwords, and returns the new account ULID.
func (s *Vault) InsertNewAccount(ctx context.Context, form models.FormData) (string, error) {
	accountULID, err := s.ids.New()
	if err != nil {
		return "", fmt.Errorf("%w: mint account ulid: %w", common.ErrCryptoOp, err)
	}
	identifierULID, err := s.ids.New()
	if err != nil {
		return "", fmt.Errorf("%w: mint identifier ulid: %w", common.ErrCryptoOp, err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Insert(ctx, accountULID, form.AccountName); err != nil {
			return err
		}
		if err := s.repomanager.Identifiers(tx).Insert(ctx, identifierULID, accountULID, form.Identifier); err != nil {
			return err
		}

		categoryRepo := s.repomanager.Categories(tx)
		if err := categoryRepo.Upsert(ctx, form.CategoryName); err != nil {
			return err
		}
		if err := categoryRepo.Link(ctx, accountULID, form.CategoryName); err != nil {
			return err
		}

		passwordRepo := s.repomanager.Passwords(tx)
		for _, p := range form.Passwords {
			if err := s.insertPassword(ctx, passwordRepo, identifierULID, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	s.logger.Debug(ctx, "account inserted", "account_ulid", accountULID, "passwords", len(form.Passwords))
	return accountULID, nil
}

// GetAccountSummary lists every account.
func (s *Vault) GetAccountSummary(ctx context.Context) ([]models.AccountSummary, error) {
	return s.GetSearchResults(ctx, models.SearchCriteria{})
}

// GetSearchResults lists the accounts matching every non-empty criterion.
func (s *Vault) GetSearchResults(ctx context.Context, criteria models.SearchCriteria) ([]models.AccountSummary, error) {
	rows, err := s.repomanager.Accounts(s.db).Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return rows, nil
}

// CountAccounts returns the number of stored accounts.
func (s *Vault) CountAccounts(ctx context.Context) (int64, error) {
	return s.repomanager.Accounts(s.db).Count(ctx)
}

// GetPasswordInfo decrypts the passwords of an identifier in slot order.
// A single undecryptable row fails the whole call.
func (s *Vault) GetPasswordInfo(ctx context.Context, identifierULID string) ([]models.PasswordInfo, error) {
	rows, err := s.repomanager.Passwords(s.db).ListByIdentifier(ctx, identifierULID)
	if err != nil {
		return nil, fmt.Errorf("get passwords: %w", err)
	}

	result := make([]models.PasswordInfo, 0, len(rows))
	for _, row := range rows {
		raw, err := s.open(row.EncryptedValue, row.Nonce)
		if err != nil {
			return nil, fmt.Errorf("decrypt password %d: %w", row.ID, err)
		}
		result = append(result, models.PasswordInfo{ID: row.ID, PasswordRaw: raw})
	}
	return result, nil
}

// GetAccountInfo loads the summary of one account together with its
// decrypted passwords.
func (s *Vault) GetAccountInfo(ctx context.Context, accountULID string) (*models.AccountInfo, error) {
	summary, err := s.repomanager.Accounts(s.db).GetSummary(ctx, accountULID)
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}

	info := &models.AccountInfo{
		AccountULID:    summary.AccountULID,
		AccountName:    summary.AccountName,
		IdentifierULID: summary.IdentifierULID,
		Identifier:     summary.Identifier,
		CategoryName:   summary.CategoryName,
		Passwords:      []models.PasswordInfo{},
	}
	if summary.IdentifierULID == "" {
		return info, nil
	}

	info.Passwords, err = s.GetPasswordInfo(ctx, summary.IdentifierULID)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateAccountInfo writes the fields of form that differ from old. Password
// slots are realigned by position: slots present in both lists are
// re-encrypted only when their text changed, extra new entries are appended
// and surplus old rows are deleted. No transaction is opened when nothing
// changed.
func (s *Vault) UpdateAccountInfo(ctx context.Context, form models.FormData, old models.AccountInfo) error {
	changed := form.Diff(old.FormData())
	if len(changed) == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		identifierULID := old.IdentifierULID
		// set once identifierULID is known to belong to old.AccountULID
		owned := false

		for _, f := range changed {
			var err error
			switch f {
			case models.FieldAccountName:
				err = s.repomanager.Accounts(tx).UpdateName(ctx, old.AccountULID, form.AccountName)
			case models.FieldIdentifier:
				identifierULID, err = s.updateIdentifier(ctx, tx, old.AccountULID, identifierULID, form.Identifier)
				owned = err == nil
			case models.FieldPasswords:
				if !owned {
					identifierULID, err = s.ownedIdentifier(ctx, tx, old.AccountULID, identifierULID, form.Identifier)
					owned = err == nil
				}
				if err == nil {
					err = s.realignPasswords(ctx, s.repomanager.Passwords(tx), identifierULID, form.Passwords, old.Passwords)
				}
			case models.FieldCategoryName:
				err = s.updateCategory(ctx, tx, old.AccountULID, form.CategoryName)
			}
			if err != nil {
				return fmt.Errorf("update %s: %w", f, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update account %s: %w", old.AccountULID, err)
	}

	s.logger.Debug(ctx, "account updated", "account_ulid", old.AccountULID, "fields", fmt.Sprint(changed))
	return nil
}

// updateIdentifier renames the identifier row of accountULID, creating it
// when the account has none. It returns the ULID of the identifier row.
func (s *Vault) updateIdentifier(ctx context.Context, tx dbx.DBTX, accountULID, identifierULID, identifier string) (string, error) {
	repo := s.repomanager.Identifiers(tx)
	if identifierULID != "" {
		return identifierULID, repo.Update(ctx, identifierULID, accountULID, identifier)
	}
	return s.insertIdentifier(ctx, repo, accountULID, identifier)
}

// ownedIdentifier returns identifierULID after checking it belongs to
// accountULID, or a freshly inserted identifier when it is empty.
func (s *Vault) ownedIdentifier(ctx context.Context, tx dbx.DBTX, accountULID, identifierULID, identifier string) (string, error) {
	repo := s.repomanager.Identifiers(tx)
	if identifierULID == "" {
		return s.insertIdentifier(ctx, repo, accountULID, identifier)
	}
	return identifierULID, repo.CheckOwner(ctx, identifierULID, accountULID)
}

func (s *Vault) insertIdentifier(ctx context.Context, repo identifiers.Repository, accountULID, identifier string) (string, error) {
	id, err := s.ids.New()
	if err != nil {
		return "", fmt.Errorf("%w: mint identifier ulid: %w", common.ErrCryptoOp, err)
	}
	return id, repo.Insert(ctx, id, accountULID, identifier)
}

func (s *Vault) updateCategory(ctx context.Context, tx dbx.DBTX, accountULID, name string) error {
	repo := s.repomanager.Categories(tx)
	if err := repo.Upsert(ctx, name); err != nil {
		return err
	}
	if err := repo.Relink(ctx, accountULID, name); err != nil {
		return err
	}
	_, err := repo.DeleteOrphans(ctx)
	return err
}

func (s *Vault) realignPasswords(ctx context.Context, repo passwords.Repository, identifierULID string, next []string, prev []models.PasswordInfo) error {
	n := min(len(next), len(prev))

	for i := 0; i < n; i++ {
		if next[i] == prev[i].PasswordRaw {
			continue
		}
		enc, nonce, err := s.seal(next[i])
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, prev[i].ID, identifierULID, enc, nonce); err != nil {
			return err
		}
	}

	for _, p := range next[n:] {
		if err := s.insertPassword(ctx, repo, identifierULID, p); err != nil {
			return err
		}
	}

	for _, p := range prev[n:] {
		if err := repo.DeleteByID(ctx, p.ID, identifierULID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAccount removes an account and everything hanging off it, then drops
// categories left without accounts. Deleting an unknown account succeeds.
func (s *Vault) DeleteAccount(ctx context.Context, accountULID string) error {
	var deleted, orphans int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if deleted, err = s.repomanager.Accounts(tx).Delete(ctx, accountULID); err != nil {
			return err
		}
		orphans, err = s.repomanager.Categories(tx).DeleteOrphans(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete account %s: %w", accountULID, err)
	}

	s.logger.Debug(ctx, "account deleted", "account_ulid", accountULID, "rows", deleted, "orphan_categories", orphans)
	return nil
}
