// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir         string // base directory for the cache database, always absolute
	Port            int
	DevMode         bool
	LogLevel        string
	LogPretty       bool
	MarketDataURL   string // Yahoo Finance v8 chart API base
	HTTPTimeoutSec  int    // timeout for outbound market-data requests
	JobsEnabled     bool   // master switch for background jobs
	RefreshSchedule string // cron spec for the price-history refresh job
	CleanupSchedule string // cron spec for the cache cleanup job
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", true),
		MarketDataURL:   getEnv("MARKET_DATA_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		HTTPTimeoutSec:  getEnvAsInt("HTTP_TIMEOUT_SECONDS", 10),
		JobsEnabled:     getEnvAsBool("JOBS_ENABLED", true),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 1h"),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MarketDataURL == "" {
		return fmt.Errorf("market data URL must not be empty")
	}
	if c.HTTPTimeoutSec < 1 {
		return fmt.Errorf("HTTP timeout must be at least 1 second")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
