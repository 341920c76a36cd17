package config

import (
	"os"
	"strconv"

	"agroyield/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings. URL is optional: when
// empty the application runs file-only against Data.File.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	File             string // CSV or xlsx yield table
	RejectZeroYields bool
}

// AnalysisConfig holds analytics engine settings
type AnalysisConfig struct {
	Alpha float64 // significance threshold for crop comparison
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			File:             getEnvOrDefault("DATA_FILE", ""),
			RejectZeroYields: getEnvBoolOrDefault("REJECT_ZERO_YIELDS", true),
		},
		Analysis: AnalysisConfig{
			Alpha: getEnvFloatOrDefault("ALPHA", 0.05),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Data.File == "" {
		return errors.ConfigInvalid("either DATABASE_URL or DATA_FILE is required")
	}
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
