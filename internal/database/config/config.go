// Package config provides database configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/festy23/kurukatsu/pkg/retry"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection configuration.
type Config struct {
	// Driver selects the gorm dialector (postgres or sqlite).
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	Port     string `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
	// SQLitePath is the database file for the sqlite driver (":memory:" allowed).
	SQLitePath string `yaml:"sqlite_path"`
	// MigrationsPath is the golang-migrate source directory.
	MigrationsPath string `yaml:"migrations_path"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
}

// DefaultConfig returns the built-in database defaults.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverPostgres,
		Host:           "localhost",
		User:           "postgres",
		Password:       "postgres",
		DBName:         "kurukatsu",
		Port:           "5432",
		SSLMode:        "disable",
		TimeZone:       "UTC",
		SQLitePath:     "kurukatsu.db",
		MigrationsPath: "migrations",
		MaxOpenConns:   25,
		MaxIdleConns:   5,
	}
}

// GetEnv reads an environment variable with a default fallback.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// BuildDSN constructs PostgreSQL DSN string from configuration.
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

// LoadConfigFromEnv loads database configuration from environment variables.
func LoadConfigFromEnv() Config {
	return DefaultConfig().WithEnv()
}

// WithEnv returns a copy of cfg with environment overrides applied.
func (cfg Config) WithEnv() Config {
	cfg.Driver = GetEnv("DB_DRIVER", cfg.Driver)
	cfg.Host = GetEnv("DB_HOST", cfg.Host)
	cfg.User = GetEnv("DB_USER", cfg.User)
	cfg.Password = GetEnv("DB_PASSWORD", cfg.Password)
	cfg.DBName = GetEnv("DB_NAME", cfg.DBName)
	cfg.Port = GetEnv("DB_PORT", cfg.Port)
	cfg.SSLMode = GetEnv("DB_SSLMODE", cfg.SSLMode)
	cfg.TimeZone = GetEnv("DB_TIMEZONE", cfg.TimeZone)
	cfg.SQLitePath = GetEnv("DB_SQLITE_PATH", cfg.SQLitePath)
	cfg.MigrationsPath = GetEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns)
	cfg.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns)
	return cfg
}

// Validate validates database configuration.
func (cfg Config) Validate() error {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.Host == "" || cfg.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for postgres")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be: postgres, sqlite)", cfg.Driver)
	}
	return nil
}

// SanitizeError removes sensitive information (password) from error messages.
func SanitizeError(err error, cfg Config) error {
	if err == nil {
		return nil
	}
	errMsg := err.Error()
	if cfg.Password != "" {
		errMsg = strings.ReplaceAll(errMsg, cfg.Password, "***")
	}
	return fmt.Errorf("failed to connect to database: %s", errMsg)
}

// getEnvInt reads an integer environment variable with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvDuration reads a duration environment variable with a default fallback.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
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

// getEnvFloat reads a float environment variable with a default fallback.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// LoadRetryConfigFromEnv loads retry configuration from environment variables.
func LoadRetryConfigFromEnv() retry.Config {
	cfg := retry.PostgresConfig()
	cfg.MaxAttempts = getEnvInt("DB_RETRY_MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.InitialDelay = getEnvDuration("DB_RETRY_INITIAL_DELAY", cfg.InitialDelay)
	cfg.MaxDelay = getEnvDuration("DB_RETRY_MAX_DELAY", cfg.MaxDelay)
	cfg.Multiplier = getEnvFloat("DB_RETRY_MULTIPLIER", cfg.Multiplier)
	return cfg
}
