// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	venmoToken := cfg.Venmo.Token
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Venmo         VenmoConfig         `yaml:"venmo"`
	LunchMoney    LunchMoneyConfig    `yaml:"lunchmoney"`
	Storage       StorageConfig       `yaml:"storage"`
	Cashout       CashoutConfig       `yaml:"cashout"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// VenmoConfig holds Venmo API configuration
type VenmoConfig struct {
	Token              string `yaml:"token"`
	SettleDelaySeconds int    `yaml:"settle_delay_seconds"`
}

// LunchMoneyConfig holds Lunch Money API configuration
type LunchMoneyConfig struct {
	Token string `yaml:"token"`
	// Category is the Lunch Money category that holds Venmo transactions,
	// usually populated by a Lunch Money rule. Empty disables enrichment.
	Category string `yaml:"category"`
	// AssetID is the Lunch Money asset that expense imports are created
	// under. Zero disables expense imports.
	AssetID        int64 `yaml:"asset_id"`
	ImportExpenses bool  `yaml:"import_expenses"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CashoutConfig holds cashout behavior settings
type CashoutConfig struct {
	LookbackDays     int  `yaml:"lookback_days"`
	CashOutRemainder bool `yaml:"cash_out_remainder"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging   LoggingConfig `yaml:"logging"`
	SentryDSN string        `yaml:"sentry_dsn"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${VENMO_API_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Venmo: VenmoConfig{
			Token:              os.Getenv("VENMO_API_TOKEN"),
			SettleDelaySeconds: getEnvInt("VENMO_SETTLE_DELAY_SECONDS", 5),
		},
		LunchMoney: LunchMoneyConfig{
			Token:          os.Getenv("LUNCHMONEY_API_TOKEN"),
			Category:       getEnv("LUNCHMONEY_CATEGORY", "Venmo"),
			AssetID:        int64(getEnvInt("LUNCHMONEY_ASSET_ID", 0)),
			ImportExpenses: os.Getenv("LUNCHMONEY_IMPORT_EXPENSES") == "true",
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("CASHOUT_DB_PATH", "venmo_cashout.db"),
		},
		Cashout: CashoutConfig{
			LookbackDays:     getEnvInt("CASHOUT_LOOKBACK_DAYS", 30),
			CashOutRemainder: os.Getenv("CASHOUT_REMAINDER") == "true",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
			SentryDSN: os.Getenv("SENTRY_DSN"),
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// GetAPIKey retrieves an API key from config first, then tries multiple
// environment variable names.
// Usage: GetAPIKey(cfg.Venmo.Token, "VENMO_API_TOKEN")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	// First, try the config value
	if configValue != "" {
		return configValue
	}

	// Then try each environment variable in order
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
