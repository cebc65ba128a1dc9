package pipeline

import "time"

// Config holds loader pipeline tuning. It is part of the application
// configuration and passed into the pipeline explicitly.
type Config struct {
	// MaxConcurrent is the fetch concurrency ceiling.
	MaxConcurrent int `mapstructure:"max_concurrent" default:"4"`
	// InterBatchDelayMS is slept between dispatch chunks.
	InterBatchDelayMS int `mapstructure:"inter_batch_delay_ms" default:"250"`
	// MaxRetries bounds retry attempts for retryable fetch failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryBaseDelayMS is the first backoff step; each retry doubles it.
	RetryBaseDelayMS int `mapstructure:"retry_base_delay_ms" default:"500"`
	// CacheTTLMinutes is the response cache time-to-live.
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes" default:"60"`
	// CacheDisabled turns off the response cache entirely; every task
	// goes straight to the vendors.
	CacheDisabled bool `mapstructure:"cache_disabled" default:"false"`
	// ContinueOnError keeps a run going past individual task failures.
	ContinueOnError bool `mapstructure:"continue_on_error" default:"true"`
}

// InterBatchDelay returns the configured inter-chunk sleep.
func (c Config) InterBatchDelay() time.Duration {
	return time.Duration(c.InterBatchDelayMS) * time.Millisecond
}

// RetryBaseDelay returns the first backoff step.
func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// CacheTTL returns the response cache time-to-live.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
