package cli

import (
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/keyprovider"
	"github.com/spf13/cobra"
)

func (c *CLI) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the core",
		Long: `Run the core: create the master key and the database on first use, then
serve commands on the host channel until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context(), c.cfg)
		},
	}
}

func (c *CLI) keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create the master key file if no key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := keyprovider.NewProvider(c.cfg.WorkDir)
			created, err := keys.EnsureKey()
			if err != nil {
				return err
			}
			if created {
				done(c.out, "Created %s", keys.KeyFilePath())
				return nil
			}
			if _, err := keys.GetKey(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "A master key is already configured")
			return nil
		},
	}
}
