// Package config loads application configuration from environment
// variables, with .env files honored in development.
package config

import (
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration.
type Config struct {
	Database      DatabaseConfig
	Import        ImportConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ImportConfig controls the file import pipeline.
type ImportConfig struct {
	// InboxPath is the directory swept for ledger export files.
	InboxPath string
	// ArchivePath receives files after a successful import.
	ArchivePath string
	// WatchSchedule is the cron expression for inbox sweeps.
	WatchSchedule string
	// Workers bounds the concurrent persistence tasks per import.
	Workers int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "grandlivre"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Import: ImportConfig{
			InboxPath:     getEnv("IMPORT_INBOX_PATH", "./inbox"),
			ArchivePath:   getEnv("IMPORT_ARCHIVE_PATH", "./inbox/archive"),
			WatchSchedule: getEnv("IMPORT_WATCH_SCHEDULE", "*/5 * * * *"),
			Workers:       getEnvAsInt("IMPORT_WORKERS", 4),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Import.Workers < 1 {
		cfg.Import.Workers = 1
	}

	return cfg, nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
