package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Feed connection
	FeedWSURL     string
	FeedAuthToken string

	// WebSocket
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSReconnectMaxAttempts  int
	WSSignalBufferSize      int

	// Reconciliation. The staleness thresholds encode a latency/staleness
	// tradeoff specific to the upstream feed cadence, so all of them are
	// tunable rather than hard-coded.
	FeedExpiringWindow        time.Duration
	FeedExpiryThreshold       time.Duration
	FeedExpiringSweepInterval time.Duration
	FeedEvictionSweepInterval time.Duration
	FeedMaxOpportunities      int

	// Alerts
	AlertThrottleWindow time.Duration
	AlertBufferSize     int

	// Default filter selection
	FilterArbMin  float64
	FilterArbMax  float64
	FilterOddsMin float64
	FilterOddsMax float64

	// History sink
	HistoryMode  string // "off", "console" or "postgres"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Feed defaults
		FeedWSURL:     getEnvOrDefault("FEED_WS_URL", "wss://ws.arbitragex.pro/socket.io"),
		FeedAuthToken: os.Getenv("FEED_AUTH_TOKEN"),

		// WebSocket defaults
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 15*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSReconnectMaxAttempts:  getIntOrDefault("WS_RECONNECT_MAX_ATTEMPTS", 0), // 0 = unbounded
		WSSignalBufferSize:      getIntOrDefault("WS_SIGNAL_BUFFER_SIZE", 1000),

		// Reconciliation defaults
		FeedExpiringWindow:        getDurationOrDefault("FEED_EXPIRING_WINDOW", 8*time.Second),
		FeedExpiryThreshold:       getDurationOrDefault("FEED_EXPIRY_THRESHOLD", 10*time.Second),
		FeedExpiringSweepInterval: getDurationOrDefault("FEED_EXPIRING_SWEEP_INTERVAL", 200*time.Millisecond),
		FeedEvictionSweepInterval: getDurationOrDefault("FEED_EVICTION_SWEEP_INTERVAL", time.Second),
		FeedMaxOpportunities:      getIntOrDefault("FEED_MAX_OPPORTUNITIES", 1000),

		// Alert defaults
		AlertThrottleWindow: getDurationOrDefault("ALERT_THROTTLE_WINDOW", 30*time.Second),
		AlertBufferSize:     getIntOrDefault("ALERT_BUFFER_SIZE", 100),

		// Filter defaults mirror the dashboard's initial selection.
		FilterArbMin:  getFloat64OrDefault("FILTER_ARB_MIN", -1.0),
		FilterArbMax:  getFloat64OrDefault("FILTER_ARB_MAX", 30.0),
		FilterOddsMin: getFloat64OrDefault("FILTER_ODDS_MIN", 1.0),
		FilterOddsMax: getFloat64OrDefault("FILTER_ODDS_MAX", 20.0),

		// History defaults
		HistoryMode:  getEnvOrDefault("HISTORY_MODE", "off"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "arbfeed"),
		PostgresPass: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "arbfeed"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.FeedWSURL == "" {
		return fmt.Errorf("FEED_WS_URL cannot be empty")
	}

	if c.FeedExpiringWindow >= c.FeedExpiryThreshold {
		return fmt.Errorf("FEED_EXPIRING_WINDOW (%v) must be shorter than FEED_EXPIRY_THRESHOLD (%v)",
			c.FeedExpiringWindow, c.FeedExpiryThreshold)
	}

	if c.FeedMaxOpportunities <= 0 {
		return fmt.Errorf("FEED_MAX_OPPORTUNITIES must be positive, got %d", c.FeedMaxOpportunities)
	}

	if c.FilterArbMin > c.FilterArbMax {
		return fmt.Errorf("FILTER_ARB_MIN (%f) exceeds FILTER_ARB_MAX (%f)", c.FilterArbMin, c.FilterArbMax)
	}

	switch strings.ToLower(c.HistoryMode) {
	case "off", "console", "postgres":
	default:
		return fmt.Errorf("HISTORY_MODE must be 'off', 'console' or 'postgres', got %q", c.HistoryMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
