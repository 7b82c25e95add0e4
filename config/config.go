package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"optionSim/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Account
	InitialBalance float64

	// Simulation Parameters
	PayoutRate   float64       // Fraction of stake paid as profit on a win (e.g. 0.85)
	PriceDrift   float64       // Half-width of the per-tick price change (e.g. 0.002 for ±0.2%)
	TickInterval time.Duration // How often the simulation advances

	// HTTP Server
	ServerPort int

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Account
	cfg.InitialBalance, err = getEnvAsFloatRequired("INITIAL_BALANCE", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_BALANCE: %v", err))
	} else if cfg.InitialBalance < 0 {
		errs = append(errs, "INITIAL_BALANCE cannot be negative")
	}

	// Simulation Parameters
	cfg.PayoutRate, err = getEnvAsFloatRequired("PAYOUT_RATE", 0.85)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PAYOUT_RATE: %v", err))
	} else if cfg.PayoutRate <= 0 || cfg.PayoutRate >= 1 {
		errs = append(errs, "PAYOUT_RATE must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.PriceDrift, err = getEnvAsFloatRequired("PRICE_DRIFT", 0.002)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICE_DRIFT: %v", err))
	} else if cfg.PriceDrift <= 0 || cfg.PriceDrift >= 1 {
		errs = append(errs, "PRICE_DRIFT must be between 0.0 and 1.0 (exclusive)")
	}

	tickIntervalSeconds := getEnvAsInt("TICK_INTERVAL_SECONDS", 1)
	if tickIntervalSeconds <= 0 {
		errs = append(errs, "TICK_INTERVAL_SECONDS must be positive")
	}
	cfg.TickInterval = time.Duration(tickIntervalSeconds) * time.Second

	// HTTP Server
	cfg.ServerPort = getEnvAsInt("SERVER_PORT", 8080)
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		errs = append(errs, "SERVER_PORT must be a valid port number")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/option_sim.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
