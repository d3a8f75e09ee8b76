package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aristath/imgbatch/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. IMGBATCH_WORKERS.
const EnvPrefix = "IMGBATCH"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"workers":           "workers",
	"overwrite":         "overwrite",
	"abort-on-error":    "abort_on_error",
	"strict":            "fail_on_task_error",
	"format":            "format",
	"filter":            "filter",
	"quality":           "jpeg_quality",
	"plain":             "plain",
	"log-level":         "log_level",
	"log-file":          "log_file",
	"history":           "history_db",
	"breaker-threshold": "breaker_threshold",
}

// Load builds the configuration. Order of precedence (lowest to highest):
// defaults, global config, project config, environment, changed flags.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := mergeConfigFile(v, globalPath); err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if err := mergeConfigFile(v, projectPath); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the conventional config locations.
// Global: ~/.imgbatch/config.json
// Project: .imgbatch/config.json (relative to cwd)
func DefaultPaths() (global, project string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".imgbatch", "config.json"), filepath.Join(".imgbatch", "config.json"), nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.BreakerThreshold < 0 {
		return fmt.Errorf("breaker_threshold must not be negative, got %d", c.BreakerThreshold)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// mergeConfigFile merges a JSON config file into v.
// Missing files are silently skipped.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
