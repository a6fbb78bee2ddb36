// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the database (always absolute)
	Port            int
	LogLevel        string
	DevMode         bool
	PriceBaseURL    string        // Quote endpoint base URL, overridable for tests
	PriceTimeout    time.Duration // Per-lookup HTTP timeout
	RefreshSchedule string        // Cron spec (6 fields) for the auto refresh; empty disables it
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("ODDLOT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path and ensure it exists
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		Port:         getEnvAsInt("ODDLOT_PORT", 8080),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		PriceBaseURL: getEnv("PRICE_BASE_URL", ""),
		PriceTimeout: time.Duration(getEnvAsInt("PRICE_TIMEOUT_SECONDS", 10)) * time.Second,
		// TWSE closes 13:30; 14:30 leaves room for delayed closing prices.
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 30 14 * * MON-FRI"),
	}

	return cfg, nil
}

// DatabasePath returns the path of the tracker database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "tracker.db")
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
