// Package config loads application configuration from an optional YAML file
// overlaid by environment variables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	dbconfig "github.com/festy23/kurukatsu/internal/database/config"
)

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig `yaml:"server"`
	// Logger holds logger configuration.
	Logger LoggerConfig `yaml:"logger"`
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string `yaml:"gin_mode"`
	// Auth holds bearer token settings.
	Auth AuthConfig `yaml:"auth"`
	// Database holds the connection settings.
	Database dbconfig.Config `yaml:"database"`
	// Redis holds the count bridge settings.
	Redis RedisConfig `yaml:"redis"`
	// Kafka holds the notification dispatcher settings.
	Kafka KafkaConfig `yaml:"kafka"`
	// Events holds the in-process count bus settings.
	Events EventsConfig `yaml:"events"`
}

// Default returns the configuration used when neither file nor environment
// provide a value.
func Default() Config {
	return Config{
		Server:   DefaultServerConfig(),
		Logger:   DefaultLoggerConfig(),
		GinMode:  "release",
		Auth:     DefaultAuthConfig(),
		Database: dbconfig.DefaultConfig(),
		Redis:    DefaultRedisConfig(),
		Kafka:    DefaultKafkaConfig(),
		Events:   DefaultEventsConfig(),
	}
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Default().withEnv()
}

// Load reads the YAML file at path (if any) and applies environment overrides.
// An empty path falls back to CONFIG_FILE.
func Load(path string) (Config, error) {
	if path == "" {
		path = GetEnv("CONFIG_FILE", "")
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	return cfg.withEnv(), nil
}

func (c Config) withEnv() Config {
	c.Server = c.Server.withEnv()
	c.Logger = c.Logger.withEnv()
	c.GinMode = GetEnv("GIN_MODE", c.GinMode)
	c.Auth = c.Auth.withEnv()
	c.Database = c.Database.WithEnv()
	c.Redis = c.Redis.withEnv()
	c.Kafka = c.Kafka.withEnv()
	c.Events = c.Events.withEnv()
	return c
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config validation failed: %w", err)
	}
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("kafka config validation failed: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config validation failed: %w", err)
	}

	return nil
}
