package cli

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setRequiredKeys() {
	viper.Set("source.ics_url", "https://cal.example.com/feed.ics")
	viper.Set("reference.base_url", "https://ref.example.com")
	viper.Set("sink.base_url", "https://records.example.com")
}

func TestBuildConfig_EveryKeyOverridable(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setRequiredKeys()

	viper.Set("timezone", "UTC")
	viper.Set("source.timeout", "5s")
	viper.Set("source.max_body_bytes", 1234)
	viper.Set("reference.token", "ref-token")
	viper.Set("reference.timeout", "7s")
	viper.Set("reference.cache_ttl", "1h")
	viper.Set("reference.max_attempts", 5)
	viper.Set("reference.initial_backoff", "2s")
	viper.Set("sink.token", "sink-token")
	viper.Set("sink.timeout", "9s")
	viper.Set("sink.max_attempts", 7)
	viper.Set("sink.initial_backoff", "3s")
	viper.Set("sink.requests_per_second", 2.5)
	viper.Set("sink.burst", 3)
	viper.Set("sink.max_field_len", 100)
	viper.Set("batch.failure_quota_fraction", 0.25)
	viper.Set("batch.time_budget", "90s")

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Source.ICSURL != "https://cal.example.com/feed.ics" {
		t.Errorf("source.ics_url = %q", cfg.Source.ICSURL)
	}
	if cfg.Source.Timeout != 5*time.Second {
		t.Errorf("source.timeout = %v, want 5s", cfg.Source.Timeout)
	}
	if cfg.Source.MaxBodyBytes != 1234 {
		t.Errorf("source.max_body_bytes = %d, want 1234", cfg.Source.MaxBodyBytes)
	}
	if cfg.Reference.Token != "ref-token" {
		t.Errorf("reference.token = %q", cfg.Reference.Token)
	}
	if cfg.Reference.Timeout != 7*time.Second {
		t.Errorf("reference.timeout = %v, want 7s", cfg.Reference.Timeout)
	}
	if cfg.Reference.CacheTTL != time.Hour {
		t.Errorf("reference.cache_ttl = %v, want 1h", cfg.Reference.CacheTTL)
	}
	if cfg.Reference.MaxAttempts != 5 {
		t.Errorf("reference.max_attempts = %d, want 5", cfg.Reference.MaxAttempts)
	}
	if cfg.Reference.InitialBackoff != 2*time.Second {
		t.Errorf("reference.initial_backoff = %v, want 2s", cfg.Reference.InitialBackoff)
	}
	if cfg.Sink.Token != "sink-token" {
		t.Errorf("sink.token = %q", cfg.Sink.Token)
	}
	if cfg.Sink.Timeout != 9*time.Second {
		t.Errorf("sink.timeout = %v, want 9s", cfg.Sink.Timeout)
	}
	if cfg.Sink.MaxAttempts != 7 {
		t.Errorf("sink.max_attempts = %d, want 7", cfg.Sink.MaxAttempts)
	}
	if cfg.Sink.InitialBackoff != 3*time.Second {
		t.Errorf("sink.initial_backoff = %v, want 3s", cfg.Sink.InitialBackoff)
	}
	if cfg.Sink.RequestsPerSecond != 2.5 {
		t.Errorf("sink.requests_per_second = %v, want 2.5", cfg.Sink.RequestsPerSecond)
	}
	if cfg.Sink.Burst != 3 {
		t.Errorf("sink.burst = %d, want 3", cfg.Sink.Burst)
	}
	if cfg.Sink.MaxFieldLen != 100 {
		t.Errorf("sink.max_field_len = %d, want 100", cfg.Sink.MaxFieldLen)
	}
	if cfg.Batch.FailureQuotaFraction != 0.25 {
		t.Errorf("batch.failure_quota_fraction = %v, want 0.25", cfg.Batch.FailureQuotaFraction)
	}
	if cfg.Batch.TimeBudget != 90*time.Second {
		t.Errorf("batch.time_budget = %v, want 90s", cfg.Batch.TimeBudget)
	}
}

func TestBuildConfig_UnsetKeysKeepDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	setRequiredKeys()

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.Sink.Timeout != 30*time.Second {
		t.Errorf("sink.timeout default = %v, want 30s", cfg.Sink.Timeout)
	}
	if cfg.Sink.MaxFieldLen != 500 {
		t.Errorf("sink.max_field_len default = %d, want 500", cfg.Sink.MaxFieldLen)
	}
	if cfg.Reference.MaxAttempts != 3 {
		t.Errorf("reference.max_attempts default = %d, want 3", cfg.Reference.MaxAttempts)
	}
	if cfg.Batch.TimeBudget != 4*time.Minute {
		t.Errorf("batch.time_budget default = %v, want 4m", cfg.Batch.TimeBudget)
	}
}

func TestBuildConfig_MissingRequiredKeys(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if _, err := buildConfig(); err == nil {
		t.Error("expected an error when required keys are unset")
	}
}
