package config

import (
	"fmt"
	"time"
)

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 tokens.
	JWTSecret string `yaml:"jwt_secret"`
	// Issuer is written to and required in the iss claim.
	Issuer string `yaml:"issuer"`
	// TokenTTL is the lifetime of tokens issued by the token command.
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// DefaultAuthConfig returns the built-in auth defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Issuer:   "kurukatsu",
		TokenTTL: 24 * time.Hour,
	}
}

// LoadAuthConfigFromEnv loads auth configuration from environment variables.
func LoadAuthConfigFromEnv() AuthConfig {
	return DefaultAuthConfig().withEnv()
}

func (c AuthConfig) withEnv() AuthConfig {
	c.JWTSecret = GetEnv("JWT_SECRET", c.JWTSecret)
	c.Issuer = GetEnv("JWT_ISSUER", c.Issuer)
	c.TokenTTL = GetEnvDuration("JWT_TOKEN_TTL", c.TokenTTL)
	return c
}

// Validate validates auth configuration.
func (c AuthConfig) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be greater than 0")
	}
	return nil
}
