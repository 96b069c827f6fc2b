// Package cli implements the jasmify command line: `serve` runs the core,
// the remaining commands act as a host and talk to a running core over the
// host channel.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/app"
	"github.com/dmitrijs2005/jasmify/internal/auth"
	"github.com/dmitrijs2005/jasmify/internal/buildinfo"
	"github.com/dmitrijs2005/jasmify/internal/config"
	"github.com/dmitrijs2005/jasmify/internal/keyprovider"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/spf13/cobra"

	gs "github.com/dmitrijs2005/jasmify/internal/transport/grpc"
)

// clientName identifies the CLI in channel tokens.
const clientName = "jasmify-cli"

// Caller runs commands on the core.
type Caller interface {
	Call(ctx context.Context, command string, args any, out any) error
	Close() error
}

// CLI holds the I/O and the dependencies shared by all commands.
type CLI struct {
	args     []string
	out      io.Writer
	errOut   io.Writer
	prompter *Prompter
	cfg      *config.Config

	newCaller func(cfg *config.Config) (Caller, error)
	serve     func(ctx context.Context, cfg *config.Config) error
}

// New returns a CLI for the process arguments args (without the program
// name) bound to the real terminal.
func New(args []string) *CLI {
	return &CLI{
		args:      args,
		out:       os.Stdout,
		errOut:    os.Stderr,
		prompter:  NewTerminalPrompter(os.Stderr),
		newCaller: dialCore,
		serve:     serveCore,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	c := New(args)
	root := c.RootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fail(c.errOut, err)
		return 1
	}
	return 0
}

func dialCore(cfg *config.Config) (Caller, error) {
	keys := keyprovider.NewProvider(cfg.WorkDir)
	return gs.NewGRPCClient(cfg.ListenAddr, clientName, auth.NewAuthenticator(keys, cfg.TokenTTL))
}

func serveCore(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// RootCmd builds the command tree.
func (c *CLI) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jasmify",
		Short: "jasmify - local encrypted credential store",
		Long: `jasmify keeps account credentials in a local SQLite database with every
password sealed by AES-256-GCM under a master key kept next to the database
(or supplied in JASMIFY_AES_KEY).

Run "jasmify serve" to start the core, then use the other commands from the
same working directory.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(c.args)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "config file (JSON, or YAML by extension)")
	pf.StringP("workdir", "d", "", "working directory holding the key file and DB/")
	pf.StringP("listen", "a", "", "host channel address (unix://path or host:port)")
	pf.StringP("metrics", "m", "", "metrics listen address (serve only)")
	pf.StringP("log-level", "l", "", "debug, info, warn or error")
	pf.String("log-format", "", "json, text or zerolog")
	pf.Duration("token-ttl", 0, "channel token lifetime")
	pf.Duration("command-timeout", 0, "per-command deadline (serve only)")

	root.AddCommand(
		c.serveCmd(),
		c.keygenCmd(),
		c.addCmd(),
		c.listCmd(),
		c.searchCmd(),
		c.showCmd(),
		c.editCmd(),
		c.deleteCmd(),
		c.versionCmd(),
	)
	return root
}

// withCaller opens a connection to the core for the duration of fn.
func (c *CLI) withCaller(cmd *cobra.Command, fn func(ctx context.Context, caller Caller) error) error {
	caller, err := c.newCaller(c.cfg)
	if err != nil {
		return fmt.Errorf("connect to core: %w", err)
	}
	defer caller.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	return fn(ctx, caller)
}

func (c *CLI) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buildinfo.PrintBuildData(c.out)
			return nil
		},
	}
}
