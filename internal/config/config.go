// Package config loads runtime configuration for jasmify.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c / -config / --config. Files
//     ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// When no listen address is configured it defaults to a unix socket inside
// the working directory.
//
// # File schema
//
//	{
//	  "work_dir": "/home/alice/.jasmify",
//	  "listen_addr": "unix:///home/alice/.jasmify/jasmify.sock",
//	  "metrics_addr": "127.0.0.1:9464",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "token_ttl": "5m",
//	  "command_timeout": "30s"
//	}
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/dmitrijs2005/jasmify/internal/netx"
)

// SocketName is the default unix socket file name inside WorkDir.
const SocketName = "jasmify.sock"

// Config holds runtime settings for the core and the CLI host.
type Config struct {
	WorkDir        string
	ListenAddr     string
	MetricsAddr    string
	LogLevel       string
	LogFormat      string
	TokenTTL       time.Duration
	CommandTimeout time.Duration
}

// LoadDefaults populates c with defaults. WorkDir is the current directory.
func (c *Config) LoadDefaults() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	c.WorkDir = wd
	c.ListenAddr = ""
	c.MetricsAddr = ""
	c.LogLevel = "info"
	c.LogFormat = logging.FormatJSON
	c.TokenTTL = 5 * time.Minute
	c.CommandTimeout = 30 * time.Second
	return nil
}

// LoadConfig applies defaults, then the config file named in args (if any),
// then the flags in args. args normally is os.Args[1:].
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.LoadDefaults(); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	abs, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("work dir: %w", err)
	}
	c.WorkDir = abs

	if c.ListenAddr == "" {
		c.ListenAddr = netx.UnixAddr(filepath.Join(c.WorkDir, SocketName))
	}
	if _, _, err := netx.Parse(c.ListenAddr); err != nil {
		return fmt.Errorf("listen address: %w", err)
	}

	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatText, logging.FormatZerolog:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}
