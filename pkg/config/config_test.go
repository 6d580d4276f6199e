package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.FeedExpiryThreshold != 10*time.Second {
		t.Errorf("expected 10s expiry threshold, got %v", cfg.FeedExpiryThreshold)
	}
	if cfg.FeedExpiringWindow != 8*time.Second {
		t.Errorf("expected 8s expiring window, got %v", cfg.FeedExpiringWindow)
	}
	if cfg.FeedExpiringSweepInterval != 200*time.Millisecond {
		t.Errorf("expected 200ms expiring sweep, got %v", cfg.FeedExpiringSweepInterval)
	}
	if cfg.FeedEvictionSweepInterval != time.Second {
		t.Errorf("expected 1s eviction sweep, got %v", cfg.FeedEvictionSweepInterval)
	}
	if cfg.FeedMaxOpportunities != 1000 {
		t.Errorf("expected capacity 1000, got %d", cfg.FeedMaxOpportunities)
	}
	if cfg.HistoryMode != "off" {
		t.Errorf("expected history off by default, got %s", cfg.HistoryMode)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("FEED_EXPIRY_THRESHOLD", "30s")
	t.Setenv("FEED_EXPIRING_WINDOW", "25s")
	t.Setenv("FEED_MAX_OPPORTUNITIES", "50")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.FeedExpiryThreshold != 30*time.Second {
		t.Errorf("expected 30s threshold, got %v", cfg.FeedExpiryThreshold)
	}
	if cfg.FeedMaxOpportunities != 50 {
		t.Errorf("expected capacity 50, got %d", cfg.FeedMaxOpportunities)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty-port", func(c *Config) { c.HTTPPort = "" }},
		{"empty-ws-url", func(c *Config) { c.FeedWSURL = "" }},
		{"expiring-window-not-before-threshold", func(c *Config) {
			c.FeedExpiringWindow = 10 * time.Second
			c.FeedExpiryThreshold = 10 * time.Second
		}},
		{"zero-capacity", func(c *Config) { c.FeedMaxOpportunities = 0 }},
		{"inverted-arb-range", func(c *Config) { c.FilterArbMin = 5; c.FilterArbMax = 1 }},
		{"bad-history-mode", func(c *Config) { c.HistoryMode = "s3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewLoggerFormats(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("console format failed: %v", err)
	}
	_ = logger.Sync()

	t.Setenv("LOG_FORMAT", "xml")
	if _, err := NewLogger(); err == nil {
		t.Error("expected error for unknown log format")
	}

	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "nope")
	if _, err := NewLogger(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestBadEnvValueFallsBackToDefault(t *testing.T) {
	t.Setenv("FEED_MAX_OPPORTUNITIES", "not-a-number")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.FeedMaxOpportunities != 1000 {
		t.Errorf("expected default on parse failure, got %d", cfg.FeedMaxOpportunities)
	}
}
