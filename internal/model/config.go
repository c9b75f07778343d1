package model

import "time"

// Config is the top-level application configuration.
type Config struct {
	Timezone  string          `yaml:"timezone" json:"timezone"`
	Source    SourceConfig    `yaml:"source" json:"source"`
	Reference ReferenceConfig `yaml:"reference" json:"reference"`
	Sink      SinkConfig      `yaml:"sink" json:"sink"`
	Batch     BatchConfig     `yaml:"batch" json:"batch"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// SourceConfig configures the calendar event source.
type SourceConfig struct {
	ICSURL       string        `yaml:"ics_url" json:"ics_url"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// ReferenceConfig configures the shared reference-data service.
type ReferenceConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Token    string        `yaml:"token" json:"token"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// Retry settings for reference table loads.
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
}

// SinkConfig configures the downstream record sink.
type SinkConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	Token          string        `yaml:"token" json:"token"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`

	// RequestsPerSecond / Burst pace writes to stay under the sink's limits.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`

	// MaxFieldLen is the per-field length ceiling applied by the sanitizer.
	MaxFieldLen int `yaml:"max_field_len" json:"max_field_len"`
}

// BatchConfig configures graceful-degradation limits for one run.
type BatchConfig struct {
	// FailureQuotaFraction sets the failure quota as ceil(total * fraction).
	FailureQuotaFraction float64 `yaml:"failure_quota_fraction" json:"failure_quota_fraction"`

	// TimeBudget is the soft wall-clock ceiling for one run, checked before
	// each item. Keep it well under any hard external execution limit.
	TimeBudget time.Duration `yaml:"time_budget" json:"time_budget"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone: "Local",
		Source: SourceConfig{
			Timeout:      30 * time.Second,
			MaxBodyBytes: 2_000_000,
		},
		Reference: ReferenceConfig{
			Timeout:        15 * time.Second,
			CacheTTL:       15 * time.Minute,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
		},
		Sink: SinkConfig{
			Timeout:           30 * time.Second,
			MaxAttempts:       3,
			InitialBackoff:    time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			MaxFieldLen:       500,
		},
		Batch: BatchConfig{
			FailureQuotaFraction: 0.5,
			TimeBudget:           4 * time.Minute,
		},
		Output: OutputConfig{},
	}
}
