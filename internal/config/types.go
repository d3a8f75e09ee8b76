package config

import "time"

// RetryConfig tunes the backoff used for transient save errors.
type RetryConfig struct {
	InitialInterval time.Duration `json:"initial_interval" mapstructure:"initial_interval"`
	MaxInterval     time.Duration `json:"max_interval" mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `json:"max_elapsed_time" mapstructure:"max_elapsed_time"`
}

// Config is the persistent, layered configuration of the CLI. Per-run
// choices such as the operation and its inputs are flags only.
type Config struct {
	// Workers is the pool size; 0 means one worker per CPU.
	Workers         int  `json:"workers" mapstructure:"workers"`
	Overwrite       bool `json:"overwrite" mapstructure:"overwrite"`
	AbortOnError    bool `json:"abort_on_error" mapstructure:"abort_on_error"`
	FailOnTaskError bool `json:"fail_on_task_error" mapstructure:"fail_on_task_error"`

	Format      string `json:"format,omitempty" mapstructure:"format"`
	Filter      string `json:"filter" mapstructure:"filter"`
	JPEGQuality int    `json:"jpeg_quality" mapstructure:"jpeg_quality"`

	// Plain disables the live terminal view.
	Plain    bool   `json:"plain" mapstructure:"plain"`
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	LogFile  string `json:"log_file,omitempty" mapstructure:"log_file"`

	// HistoryDB is the SQLite run journal; empty disables it.
	HistoryDB string `json:"history_db,omitempty" mapstructure:"history_db"`

	// BreakerThreshold of 0 disables the per-directory save breaker.
	BreakerThreshold int         `json:"breaker_threshold" mapstructure:"breaker_threshold"`
	SaveRetry        RetryConfig `json:"save_retry" mapstructure:"save_retry"`
}
