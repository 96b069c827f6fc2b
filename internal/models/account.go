// Package models defines the vault's plain-data shapes exchanged with the host.
//
// FormData is what the user edits; AccountInfo is the enriched shape carrying
// row identities. Conversion is one-way: AccountInfo → FormData.
package models

import "slices"

// FormData is the editable form of an account.
type FormData struct {
	AccountName  string   `json:"accountName"`
	Identifier   string   `json:"identifier"`
	Passwords    []string `json:"passwords"`
	CategoryName string   `json:"categoryName"`
}

// PasswordInfo is one decrypted password slot.
type PasswordInfo struct {
	ID          int64  `json:"id"`
	PasswordRaw string `json:"passwordRaw"`
}

// AccountSummary is one row of the account listing.
type AccountSummary struct {
	AccountULID    string `json:"accountUlid"`
	AccountName    string `json:"accountName"`
	Identifier     string `json:"identifier"`
	IdentifierULID string `json:"identifierUlid"`
	CategoryName   string `json:"categoryName"`
}

// AccountInfo is a summary plus the positional password list.
type AccountInfo struct {
	AccountULID    string         `json:"accountUlid"`
	AccountName    string         `json:"accountName"`
	IdentifierULID string         `json:"identifierUlid"`
	Identifier     string         `json:"identifier"`
	Passwords      []PasswordInfo `json:"passwords"`
	CategoryName   string         `json:"categoryName"`
}

// SearchCriteria holds substring filters; empty fields are ignored.
type SearchCriteria struct {
	AccountName  string `json:"accountName"`
	Identifier   string `json:"identifier"`
	CategoryName string `json:"categoryName"`
}

// IsEmpty reports whether no filter is set.
func (c SearchCriteria) IsEmpty() bool {
	return c.AccountName == "" && c.Identifier == "" && c.CategoryName == ""
}

// FormField names a field of FormData that an update may touch.
type FormField int

const (
	FieldAccountName FormField = iota
	FieldIdentifier
	FieldPasswords
	FieldCategoryName
)

func (f FormField) String() string {
	switch f {
	case FieldAccountName:
		return "accountName"
	case FieldIdentifier:
		return "identifier"
	case FieldPasswords:
		return "passwords"
	case FieldCategoryName:
		return "categoryName"
	default:
		return "unknown"
	}
}

// Diff lists the fields whose value in f differs from old, in declaration order.
// A nil and an empty password list compare equal.
func (f FormData) Diff(old FormData) []FormField {
	var fields []FormField
	if f.AccountName != old.AccountName {
		fields = append(fields, FieldAccountName)
	}
	if f.Identifier != old.Identifier {
		fields = append(fields, FieldIdentifier)
	}
	if !slices.Equal(f.Passwords, old.Passwords) {
		fields = append(fields, FieldPasswords)
	}
	if f.CategoryName != old.CategoryName {
		fields = append(fields, FieldCategoryName)
	}
	return fields
}

// FormData projects the account onto its editable form.
func (a AccountInfo) FormData() FormData {
	passwords := make([]string, len(a.Passwords))
	for i, p := range a.Passwords {
		passwords[i] = p.PasswordRaw
	}
	return FormData{
		AccountName:  a.AccountName,
		Identifier:   a.Identifier,
		Passwords:    passwords,
		CategoryName: a.CategoryName,
	}
}
