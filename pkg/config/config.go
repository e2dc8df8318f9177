// Package config loads orchestration settings from defaults, an optional
// YAML file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunable parameters of the orchestration engine.
type Config struct {
	// PollInterval is the base delay between status poll cycles.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// PollTimeout bounds how long PollUntilComplete waits for a batch.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`

	// SubmissionConcurrency is the maximum in-flight submit/cancel calls.
	SubmissionConcurrency int64 `mapstructure:"submission_concurrency"`

	// PollConcurrency is the maximum in-flight describe calls.
	PollConcurrency int64 `mapstructure:"poll_concurrency"`

	// TransferConcurrency is the maximum in-flight object transfers.
	TransferConcurrency int64 `mapstructure:"transfer_concurrency"`

	// RetryBaseDelay is the delay before the first retry of a failed call.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`

	// RetryMaxDelay caps the retry backoff.
	RetryMaxDelay time.Duration `mapstructure:"retry_max_delay"`

	// RetryMaxAttempts is the total attempts per remote call.
	RetryMaxAttempts int `mapstructure:"retry_max_attempts"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		PollInterval:          5 * time.Second,
		PollTimeout:           1 * time.Hour,
		SubmissionConcurrency: 8,
		PollConcurrency:       32,
		TransferConcurrency:   16,
		RetryBaseDelay:        500 * time.Millisecond,
		RetryMaxDelay:         30 * time.Second,
		RetryMaxAttempts:      5,
	}
}

// Load reads configuration from the given YAML file (optional, empty path
// skips it) and from BATCHKIT_* environment variables, layered over the
// defaults. Malformed values fail loading.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("poll_timeout", def.PollTimeout)
	v.SetDefault("submission_concurrency", def.SubmissionConcurrency)
	v.SetDefault("poll_concurrency", def.PollConcurrency)
	v.SetDefault("transfer_concurrency", def.TransferConcurrency)
	v.SetDefault("retry_base_delay", def.RetryBaseDelay)
	v.SetDefault("retry_max_delay", def.RetryMaxDelay)
	v.SetDefault("retry_max_attempts", def.RetryMaxAttempts)

	v.SetEnvPrefix("BATCHKIT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("config: poll_interval must be positive"))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("config: poll_timeout must be positive"))
	}
	if c.SubmissionConcurrency <= 0 {
		errs = append(errs, errors.New("config: submission_concurrency must be positive"))
	}
	if c.PollConcurrency <= 0 {
		errs = append(errs, errors.New("config: poll_concurrency must be positive"))
	}
	if c.TransferConcurrency <= 0 {
		errs = append(errs, errors.New("config: transfer_concurrency must be positive"))
	}
	if c.RetryBaseDelay <= 0 {
		errs = append(errs, errors.New("config: retry_base_delay must be positive"))
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		errs = append(errs, errors.New("config: retry_max_delay must be >= retry_base_delay"))
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, errors.New("config: retry_max_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}
