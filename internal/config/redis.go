package config

import "fmt"

// RedisConfig holds the count event bridge connection settings.
// An empty Addr disables the bridge.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Channel is the pub/sub channel count events are relayed on.
	Channel string `yaml:"channel"`
}

// DefaultRedisConfig returns the built-in redis defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Channel: "kurukatsu:counts",
	}
}

// LoadRedisConfigFromEnv loads redis configuration from environment variables.
func LoadRedisConfigFromEnv() RedisConfig {
	return DefaultRedisConfig().withEnv()
}

func (c RedisConfig) withEnv() RedisConfig {
	c.Addr = GetEnv("REDIS_ADDR", c.Addr)
	c.Password = GetEnv("REDIS_PASSWORD", c.Password)
	c.DB = GetEnvInt("REDIS_DB", c.DB)
	c.Channel = GetEnv("REDIS_CHANNEL", c.Channel)
	return c
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Validate validates redis configuration.
func (c RedisConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.DB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative")
	}
	if c.Channel == "" {
		return fmt.Errorf("REDIS_CHANNEL must not be empty")
	}
	return nil
}
