package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/jasmify/internal/models"
	"github.com/fatih/color"

	gs "github.com/dmitrijs2005/jasmify/internal/transport/grpc"
)

// done reports a completed write.
func done(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// fail prints err with a hint for the failures a user can act on.
func fail(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.RedString("✗ Error:"), err)
	switch {
	case errors.Is(err, gs.ErrUnavailable):
		fmt.Fprintf(w, "%s Start the core with %s in the same working directory\n",
			color.CyanString("→"), color.YellowString("jasmify serve"))
	case errors.Is(err, gs.ErrUnauthorized):
		fmt.Fprintf(w, "%s The core runs with a different master key\n", color.CyanString("→"))
	}
}

func printSummary(w io.Writer, rows []models.AccountSummary) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No accounts")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ULID\tACCOUNT\tIDENTIFIER\tCATEGORY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.AccountULID, r.AccountName, r.Identifier, r.CategoryName)
	}
	return tw.Flush()
}

func printAccount(w io.Writer, info models.AccountInfo) {
	fmt.Fprintf(w, "Account:    %s (%s)\n", color.New(color.Bold).Sprint(info.AccountName), info.AccountULID)
	fmt.Fprintf(w, "Identifier: %s\n", info.Identifier)
	fmt.Fprintf(w, "Category:   %s\n", info.CategoryName)
	for i, p := range info.Passwords {
		fmt.Fprintf(w, "Password #%d: %s\n", i+1, p.PasswordRaw)
	}
}
