package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrIncompleteForm = errors.New("incomplete form")

// Validate applies the editor's form rules: every text field is required and
// at least one non-empty password must be present. The store itself accepts
// forms that fail these rules; only interactive front ends enforce them.
func (f FormData) Validate() error {
	var missing []string
	if strings.TrimSpace(f.AccountName) == "" {
		missing = append(missing, "accountName")
	}
	if strings.TrimSpace(f.Identifier) == "" {
		missing = append(missing, "identifier")
	}
	if strings.TrimSpace(f.CategoryName) == "" {
		missing = append(missing, "categoryName")
	}
	if len(f.Passwords) == 0 {
		missing = append(missing, "passwords")
	}
	for i, p := range f.Passwords {
		if p == "" {
			missing = append(missing, fmt.Sprintf("passwords[%d]", i))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteForm, strings.Join(missing, ", "))
	}
	return nil
}
