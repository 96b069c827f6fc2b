package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/jasmify/internal/flagx"
)

// Flags lists every spelling parseFlags understands, so callers with their
// own flag parser can declare them too.
var Flags = []string{
	"-d", "--workdir",
	"-a", "--listen",
	"-m", "--metrics",
	"-l", "--log-level",
	"--log-format",
	"--token-ttl",
	"--command-timeout",
}

// parseFlags overlays cfg with command-line flags:
//
//	-d, --workdir string           working directory (key file and DB/)
//	-a, --listen string            host channel address (unix://path or host:port)
//	-m, --metrics string           metrics listen address, empty disables
//	-l, --log-level string         debug, info, warn or error
//	    --log-format string        json, text or zerolog
//	    --token-ttl duration       channel token lifetime
//	    --command-timeout duration per-command deadline, 0 disables
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, Flags)

	fs := flag.NewFlagSet("jasmify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.WorkDir, "d", cfg.WorkDir, "working directory")
	fs.StringVar(&cfg.WorkDir, "workdir", cfg.WorkDir, "working directory")
	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "host channel address")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "host channel address")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "channel token lifetime")
	fs.DurationVar(&cfg.CommandTimeout, "command-timeout", cfg.CommandTimeout, "per-command deadline")

	return fs.Parse(args)
}
