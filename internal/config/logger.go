package config

import "fmt"

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Format is the logging format (json, console).
	Format string `yaml:"format"`
	// Output is the output destination (stdout, stderr, or file path).
	Output string `yaml:"output"`
	// MaxSizeMB is the size at which a log file is rotated. Only used for file output.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days"`
}

// DefaultLoggerConfig returns the built-in logger defaults.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// LoadLoggerConfigFromEnv loads logger configuration from environment variables.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return DefaultLoggerConfig().withEnv()
}

func (c LoggerConfig) withEnv() LoggerConfig {
	c.Level = GetEnv("LOG_LEVEL", c.Level)
	c.Format = GetEnv("LOG_FORMAT", c.Format)
	c.Output = GetEnv("LOG_OUTPUT", c.Output)
	c.MaxSizeMB = GetEnvInt("LOG_MAX_SIZE_MB", c.MaxSizeMB)
	c.MaxBackups = GetEnvInt("LOG_MAX_BACKUPS", c.MaxBackups)
	c.MaxAgeDays = GetEnvInt("LOG_MAX_AGE_DAYS", c.MaxAgeDays)
	return c
}

// Validate validates logger configuration.
func (c LoggerConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be: debug, info, warn, error)", c.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s (must be: json, console)", c.Format)
	}

	if c.IsFile() && c.MaxSizeMB <= 0 {
		return fmt.Errorf("LOG_MAX_SIZE_MB must be greater than 0 for file output")
	}

	return nil
}

// IsProduction returns true if logger is configured for production.
func (c LoggerConfig) IsProduction() bool {
	return c.Format == "json" && c.Level != "debug"
}

// IsFile reports whether Output names a file rather than a standard stream.
func (c LoggerConfig) IsFile() bool {
	return c.Output != "" && c.Output != "stdout" && c.Output != "stderr"
}
