package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"forecastbonus/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig `validate:"required"`
	Scoring  ScoringConfig
	Payout   PayoutConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// service without persistence.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// ScoringConfig holds scoring engine settings
type ScoringConfig struct {
	// DefaultSeed seeds bonus round selection for assignments without an identifier
	DefaultSeed string
}

// PayoutConfig holds batch payout settings
type PayoutConfig struct {
	Concurrency int
	PageSize    int
	Currency    string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		Scoring:  *loadScoringConfig(),
		Payout:   *loadPayoutConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		DefaultSeed: getEnvOrDefault("DEFAULT_SEED", "defaultSeed"),
	}
}

func loadPayoutConfig() *PayoutConfig {
	return &PayoutConfig{
		Concurrency: getEnvIntOrDefault("PAYOUT_CONCURRENCY", 4),
		PageSize:    getEnvIntOrDefault("PAYOUT_PAGE_SIZE", 100),
		Currency:    strings.ToUpper(getEnvOrDefault("CURRENCY", "GBP")),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Database.Enabled() && !strings.HasPrefix(config.Database.URL, "postgres") {
		return errors.ConfigInvalid("DATABASE_URL must be a postgres connection string")
	}
	if config.Payout.Concurrency < 1 {
		return errors.ConfigInvalid("PAYOUT_CONCURRENCY must be at least 1")
	}
	if config.Payout.PageSize < 1 {
		return errors.ConfigInvalid("PAYOUT_PAGE_SIZE must be at least 1")
	}
	if len(config.Payout.Currency) != 3 {
		return errors.ConfigInvalid("CURRENCY must be a three letter code")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
