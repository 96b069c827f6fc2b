package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/commands"
	"github.com/dmitrijs2005/jasmify/internal/models"
	"github.com/dmitrijs2005/jasmify/internal/ulidx"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("aborted")

// accountArg accepts exactly one argument holding an account ULID.
var accountArg = cobra.MatchAll(cobra.ExactArgs(1), func(_ *cobra.Command, args []string) error {
	if !ulidx.Valid(args[0]) {
		return fmt.Errorf("invalid account ULID %q", args[0])
	}
	return nil
})

func (c *CLI) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := c.readNewForm()
			if err != nil {
				return err
			}
			if err := form.Validate(); err != nil {
				return err
			}

			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				var ulid string
				if err := caller.Call(ctx, commands.InsertFormData, map[string]any{"formData": form}, &ulid); err != nil {
					return err
				}
				done(c.out, "Added %s", ulid)
				return nil
			})
		},
	}
}

func (c *CLI) readNewForm() (models.FormData, error) {
	var (
		form models.FormData
		err  error
	)
	if form.AccountName, err = c.prompter.Text("Account name"); err != nil {
		return form, err
	}
	if form.Identifier, err = c.prompter.Text("Identifier (login, e-mail, ...)"); err != nil {
		return form, err
	}
	if form.CategoryName, err = c.prompter.Text("Category"); err != nil {
		return form, err
	}
	form.Passwords, err = c.readExtraPasswords(0)
	return form, err
}

// readExtraPasswords reads passwords until an empty answer. Numbering starts
// after the first `have` slots.
func (c *CLI) readExtraPasswords(have int) ([]string, error) {
	passwords := []string{}
	for i := have + 1; ; i++ {
		pw, err := c.prompter.Password(fmt.Sprintf("Password #%d (empty to finish)", i))
		if err != nil {
			return nil, err
		}
		if pw == "" {
			return passwords, nil
		}
		passwords = append(passwords, pw)
	}
}

func (c *CLI) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				var rows []models.AccountSummary
				if err := caller.Call(ctx, commands.GetAccountSummary, nil, &rows); err != nil {
					return err
				}
				return printSummary(c.out, rows)
			})
		},
	}
}

func (c *CLI) searchCmd() *cobra.Command {
	var criteria models.SearchCriteria

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find accounts by substring",
		Long: `Find accounts whose fields contain the given substrings. All given
filters must match; omitted filters match everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				var rows []models.AccountSummary
				var err error
				if criteria.IsEmpty() {
					err = caller.Call(ctx, commands.GetAccountSummary, nil, &rows)
				} else {
					err = caller.Call(ctx, commands.GetSearchResults, map[string]any{"searchCriteria": criteria}, &rows)
				}
				if err != nil {
					return err
				}
				return printSummary(c.out, rows)
			})
		},
	}
	cmd.Flags().StringVar(&criteria.AccountName, "account", "", "account name contains")
	cmd.Flags().StringVar(&criteria.Identifier, "identifier", "", "identifier contains")
	cmd.Flags().StringVar(&criteria.CategoryName, "category", "", "category contains")
	return cmd
}

func (c *CLI) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <accountUlid>",
		Short: "Show an account with its passwords",
		Args:  accountArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				var info models.AccountInfo
				if err := caller.Call(ctx, commands.GetAccountInfo, map[string]any{"accountUlid": args[0]}, &info); err != nil {
					return err
				}
				printAccount(c.out, info)
				return nil
			})
		},
	}
}

func (c *CLI) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <accountUlid>",
		Short: "Edit an account",
		Long: `Edit an account field by field. Pressing Enter keeps the current value.
For each existing password enter a new one, Enter to keep it or "-" to remove
it; then add further passwords until an empty answer.`,
		Args: accountArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				var old models.AccountInfo
				if err := caller.Call(ctx, commands.GetAccountInfo, map[string]any{"accountUlid": args[0]}, &old); err != nil {
					return err
				}

				form, err := c.readEditedForm(old)
				if err != nil {
					return err
				}
				if err := form.Validate(); err != nil {
					return err
				}
				if len(form.Diff(old.FormData())) == 0 {
					fmt.Fprintln(c.out, "Nothing changed")
					return nil
				}

				payload := map[string]any{"formData": form, "accountInfo": old}
				if err := caller.Call(ctx, commands.UpdateAccountInfo, payload, nil); err != nil {
					return err
				}
				done(c.out, "Updated %s", old.AccountULID)
				return nil
			})
		},
	}
}

func (c *CLI) readEditedForm(old models.AccountInfo) (models.FormData, error) {
	form := old.FormData()
	var err error

	if form.AccountName, err = c.prompter.TextDefault("Account name", old.AccountName); err != nil {
		return form, err
	}
	if form.Identifier, err = c.prompter.TextDefault("Identifier", old.Identifier); err != nil {
		return form, err
	}
	if form.CategoryName, err = c.prompter.TextDefault("Category", old.CategoryName); err != nil {
		return form, err
	}

	passwords := make([]string, 0, len(old.Passwords))
	for i, p := range old.Passwords {
		pw, err := c.prompter.Password(fmt.Sprintf("Password #%d (Enter keeps, - removes)", i+1))
		if err != nil {
			return form, err
		}
		switch pw {
		case "":
			passwords = append(passwords, p.PasswordRaw)
		case "-":
		default:
			passwords = append(passwords, pw)
		}
	}

	extra, err := c.readExtraPasswords(len(passwords))
	if err != nil {
		return form, err
	}
	form.Passwords = append(passwords, extra...)
	return form, nil
}

func (c *CLI) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <accountUlid>",
		Short: "Delete an account",
		Args:  accountArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := c.prompter.Confirm(fmt.Sprintf("Delete account %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			return c.withCaller(cmd, func(ctx context.Context, caller Caller) error {
				if err := caller.Call(ctx, commands.DeleteAccount, map[string]any{"accountUlid": args[0]}, nil); err != nil {
					return err
				}
				done(c.out, "Deleted %s", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
