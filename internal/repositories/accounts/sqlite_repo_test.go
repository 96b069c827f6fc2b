package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/database/dbtest"
	"github.com/dmitrijs2005/jasmify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, db *sql.DB, ulid, name, identifier, category string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO accounts (ulid, account_name) VALUES (?, ?)`, ulid, name)
	require.NoError(t, err)
	if identifier != "" {
		_, err = db.Exec(`INSERT INTO identifiers (ulid, account_ulid, identifier) VALUES (?, ?, ?)`, "I"+ulid, ulid, identifier)
		require.NoError(t, err)
	}
	if category != "" {
		_, err = db.Exec(`INSERT OR IGNORE INTO categories (category_name) VALUES (?)`, category)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO account_categories (account_ulid, category_id)
			SELECT ?, id FROM categories WHERE category_name = ?`, ulid, category)
		require.NoError(t, err)
	}
}

func names(rows []models.AccountSummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.AccountName
	}
	return out
}

func TestInsertAndGetSummary(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, "A1", "Gmail"))

	s, err := r.GetSummary(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, &models.AccountSummary{AccountULID: "A1", AccountName: "Gmail"}, s,
		"missing identifier and category project as empty strings")

	_, err = r.GetSummary(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInsert_DuplicateULID(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, "A1", "x"))
	err := r.Insert(ctx, "A1", "y")
	require.ErrorIs(t, err, common.ErrSchema)
}

func TestUpdateName(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seed(t, db, "A1", "Gmail", "alice@x", "email")
	require.NoError(t, r.UpdateName(ctx, "A1", "Google"))

	s, err := r.GetSummary(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountSummary{
		AccountULID:    "A1",
		AccountName:    "Google",
		Identifier:     "alice@x",
		IdentifierULID: "IA1",
		CategoryName:   "email",
	}, *s)
}

func TestUpdateName_UnknownAccount(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)

	err := r.UpdateName(context.Background(), "nope", "Google")
	require.ErrorIs(t, err, common.ErrSchema)
}

func TestDelete_CascadesAndIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seed(t, db, "A1", "Gmail", "alice@x", "email")
	_, err := db.Exec(`INSERT INTO passwords (identifier_ulid, encrypted_value, nonce) VALUES ('IA1', 'ab', 'cd')`)
	require.NoError(t, err)

	n, err := r.Delete(ctx, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, 0, dbtest.Count(t, db, "identifiers"))
	assert.Equal(t, 0, dbtest.Count(t, db, "account_categories"))
	assert.Equal(t, 0, dbtest.Count(t, db, "passwords"))
	assert.Equal(t, 1, dbtest.Count(t, db, "categories"), "categories are not cascaded")

	n, err = r.Delete(ctx, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestSearch(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seed(t, db, "A1", "Gmail", "alice@x", "email")
	seed(t, db, "A2", "GitHub", "alice", "dev")
	seed(t, db, "A3", "Bank", "", "")
	seed(t, db, "A4", "100%_sure", "bob", "misc")

	tests := []struct {
		name     string
		criteria models.SearchCriteria
		want     []string
	}{
		{"empty returns all", models.SearchCriteria{}, []string{"Gmail", "GitHub", "Bank", "100%_sure"}},
		{"account name substring", models.SearchCriteria{AccountName: "G"}, []string{"Gmail", "GitHub"}},
		{"and semantics", models.SearchCriteria{AccountName: "G", CategoryName: "dev"}, []string{"GitHub"}},
		{"identifier", models.SearchCriteria{Identifier: "alice"}, []string{"Gmail", "GitHub"}},
		{"no match", models.SearchCriteria{AccountName: "zzz"}, []string{}},
		{"null identifier never matches", models.SearchCriteria{Identifier: "a"}, []string{"Gmail", "GitHub"}},
		{"percent is literal", models.SearchCriteria{AccountName: "%"}, []string{"100%_sure"}},
		{"underscore is literal", models.SearchCriteria{AccountName: "_"}, []string{"100%_sure"}},
		{"backslash is literal", models.SearchCriteria{AccountName: `\`}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := r.Search(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestSearch_EmptyEqualsFullListing(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	seed(t, db, "A1", "Gmail", "alice@x", "email")
	seed(t, db, "A2", "Bank", "", "")

	all, err := r.Search(ctx, models.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	for _, s := range all {
		one, err := r.GetSummary(ctx, s.AccountULID)
		require.NoError(t, err)
		assert.Equal(t, s, *one)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	q, args := buildSearchQuery(models.SearchCriteria{Identifier: "a_b"})
	assert.Contains(t, q, `i.identifier LIKE ? ESCAPE '\'`)
	assert.NotContains(t, q, "a.account_name LIKE")
	assert.Equal(t, []any{`%a\_b%`}, args)
}

func TestCount(t *testing.T) {
	db := dbtest.Open(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	seed(t, db, "A1", "x", "", "")
	seed(t, db, "A2", "y", "", "")
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
