// Package accounts provides persistence for account rows and the account
// listing/search projection.
//
// # Data Model
//
// An account is a ULID-keyed row with a user-assigned name. The listing joins
// accounts with their identifier and category using LEFT JOINs, so an account
// missing either still appears with empty projected fields.
//
// # Search
//
// Search criteria are substring filters (LIKE '%…%') joined with AND. Empty
// fields disable their clause. User input is always bound as a parameter and
// the LIKE wildcards '%' and '_' in it are escaped, so they match literally.
//
// Typical Usage
//
//	repo := accounts.NewSQLiteRepository(tx)
//	_ = repo.Insert(ctx, ulid, "Gmail")
//	rows, _ := repo.Search(ctx, models.SearchCriteria{AccountName: "Git"})
package accounts
