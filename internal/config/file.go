package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/jasmify/internal/flagx"
	"github.com/dmitrijs2005/jasmify/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file decoding. Only
// fields present in the file override the current values.
type FileConfig struct {
	WorkDir        *string         `json:"work_dir" yaml:"work_dir"`
	ListenAddr     *string         `json:"listen_addr" yaml:"listen_addr"`
	MetricsAddr    *string         `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
	TokenTTL       *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	CommandTimeout *timex.Duration `json:"command_timeout" yaml:"command_timeout"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.WorkDir, fc.WorkDir)
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.TokenTTL != nil {
		cfg.TokenTTL = fc.TokenTTL.Duration
	}
	if fc.CommandTimeout != nil {
		cfg.CommandTimeout = fc.CommandTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
