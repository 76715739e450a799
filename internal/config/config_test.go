package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a minimal valid configuration for tests.
func validConfig() *Config {
	cfg := NewConfig()
	cfg.Seeds = []string{"example.com"}
	return cfg
}

// TestNewConfigDefaults tests that the constructor applies documented defaults.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected max depth %d, got %d", DefaultMaxDepth, cfg.MaxDepth)
	}
	if cfg.GlobalConcurrency != DefaultGlobalConcurrency {
		t.Errorf("expected global concurrency %d, got %d", DefaultGlobalConcurrency, cfg.GlobalConcurrency)
	}
	if cfg.MinInterval != DefaultMinInterval {
		t.Errorf("expected min interval %v, got %v", DefaultMinInterval, cfg.MinInterval)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.UserAgent == "" {
		t.Error("expected non-empty default user agent")
	}
}

// TestConfigValidate tests validation error cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()

		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no seeds",
			mutate:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrNoSeeds,
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.MaxDepth = -1 },
			wantErr: ErrInvalidMaxDepth,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.RequestTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero global concurrency",
			mutate:  func(c *Config) { c.GlobalConcurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "zero domain concurrency",
			mutate:  func(c *Config) { c.DomainConcurrency = 0 },
			wantErr: ErrInvalidDomainConcurrency,
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.MinInterval = -time.Second },
			wantErr: ErrInvalidMinInterval,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: ErrInvalidMaxRetries,
		},
		{
			name:    "inverted body bounds",
			mutate:  func(c *Config) { c.MinBodySize = 10; c.MaxBodySize = 5 },
			wantErr: ErrInvalidBodyBounds,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.CSVReport = true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestXDGDirs tests that XDG paths end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{XDGDataDir(), XDGConfigDir()} {
		if dir == "" {
			t.Fatal("expected non-empty XDG directory")
		}
	}
}
