package config

import (
	"fmt"
	"time"
)

// KafkaConfig holds the notification dispatcher settings.
// No brokers means notifications are only logged.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	NotifyTopic  string        `yaml:"notify_topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultKafkaConfig returns the built-in kafka defaults.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		NotifyTopic:  "kurukatsu.notifications",
		WriteTimeout: 5 * time.Second,
	}
}

// LoadKafkaConfigFromEnv loads kafka configuration from environment variables.
func LoadKafkaConfigFromEnv() KafkaConfig {
	return DefaultKafkaConfig().withEnv()
}

func (c KafkaConfig) withEnv() KafkaConfig {
	c.Brokers = GetEnvList("KAFKA_BROKERS", c.Brokers)
	c.NotifyTopic = GetEnv("KAFKA_NOTIFY_TOPIC", c.NotifyTopic)
	c.WriteTimeout = GetEnvDuration("KAFKA_WRITE_TIMEOUT", c.WriteTimeout)
	return c
}

// Enabled reports whether at least one broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Validate validates kafka configuration.
func (c KafkaConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.NotifyTopic == "" {
		return fmt.Errorf("KAFKA_NOTIFY_TOPIC must not be empty")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("KAFKA_WRITE_TIMEOUT must be greater than 0")
	}
	return nil
}

// EventsConfig holds the in-process count bus settings.
type EventsConfig struct {
	// SubscriberBuffer is the per-observer channel capacity. Events that do
	// not fit are dropped.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

// DefaultEventsConfig returns the built-in event bus defaults.
func DefaultEventsConfig() EventsConfig {
	return EventsConfig{SubscriberBuffer: 16}
}

func (c EventsConfig) withEnv() EventsConfig {
	c.SubscriberBuffer = GetEnvInt("EVENTS_SUBSCRIBER_BUFFER", c.SubscriberBuffer)
	return c
}

// Validate validates event bus configuration.
func (c EventsConfig) Validate() error {
	if c.SubscriberBuffer <= 0 {
		return fmt.Errorf("EVENTS_SUBSCRIBER_BUFFER must be greater than 0")
	}
	return nil
}
