package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the server host (empty string means all interfaces).
	Host string `yaml:"host"`
	// Port is the server port (e.g., ":8080" or "8080").
	Port string `yaml:"port"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins lists CORS and websocket origins; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultServerConfig returns the built-in server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// LoadServerConfigFromEnv loads server configuration from environment variables.
func LoadServerConfigFromEnv() ServerConfig {
	return DefaultServerConfig().withEnv()
}

func (c ServerConfig) withEnv() ServerConfig {
	c.Host = GetEnv("SERVER_HOST", c.Host)
	c.Port = GetEnv("SERVER_PORT", c.Port)
	c.ReadTimeout = GetEnvDuration("SERVER_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = GetEnvDuration("SERVER_WRITE_TIMEOUT", c.WriteTimeout)
	c.IdleTimeout = GetEnvDuration("SERVER_IDLE_TIMEOUT", c.IdleTimeout)
	c.ShutdownTimeout = GetEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.AllowedOrigins = GetEnvList("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	return c
}

// GetAddress returns the full server address (host:port).
func (c ServerConfig) GetAddress() string {
	if c.Host == "" {
		return c.Port
	}

	// net.JoinHostPort adds the colon itself
	port := strings.TrimPrefix(c.Port, ":")
	return net.JoinHostPort(c.Host, port)
}

// Validate validates server configuration.
func (c ServerConfig) Validate() error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IdleTimeout must be greater than 0")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("ShutdownTimeout must be greater than 0")
	}
	return nil
}
