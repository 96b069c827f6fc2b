package accounts

import (
	"context"

	"github.com/dmitrijs2005/jasmify/internal/models"
)

// Repository describes account persistence and the summary projection.
type Repository interface {
	// Insert adds a new account row.
	Insert(ctx context.Context, ulid, name string) error

	// UpdateName renames an account and bumps updated_at; an unknown ulid is
	// common.ErrSchema.
	UpdateName(ctx context.Context, ulid, name string) error

	// Delete removes an account; dependent rows go with it through
	// ON DELETE CASCADE. It returns the number of deleted rows (0 or 1).
	Delete(ctx context.Context, ulid string) (int64, error)

	// Search returns the summary rows matching criteria; empty criteria
	// returns every account.
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.AccountSummary, error)

	// GetSummary returns the summary row of one account or common.ErrorNotFound.
	GetSummary(ctx context.Context, ulid string) (*models.AccountSummary, error)

	// Count returns the number of accounts.
	Count(ctx context.Context) (int64, error)
}
