package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:          0,
		Filter:           "lanczos",
		JPEGQuality:      95,
		LogLevel:         "info",
		BreakerThreshold: 5,
		SaveRetry: RetryConfig{
			InitialInterval: 50 * time.Millisecond,
			MaxInterval:     time.Second,
			MaxElapsedTime:  5 * time.Second,
		},
	}
}

// setDefaults registers every key with viper so env lookups and
// Unmarshal see the full key set.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("abort_on_error", d.AbortOnError)
	v.SetDefault("fail_on_task_error", d.FailOnTaskError)
	v.SetDefault("format", d.Format)
	v.SetDefault("filter", d.Filter)
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("plain", d.Plain)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("history_db", d.HistoryDB)
	v.SetDefault("breaker_threshold", d.BreakerThreshold)
	v.SetDefault("save_retry.initial_interval", d.SaveRetry.InitialInterval)
	v.SetDefault("save_retry.max_interval", d.SaveRetry.MaxInterval)
	v.SetDefault("save_retry.max_elapsed_time", d.SaveRetry.MaxElapsedTime)
}
