package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/festy23/kurukatsu/internal/config"
)

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_OUTPUT", "stdout")

	logger, err := New()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Desugar().Core().Enabled(-1), "debug should be enabled")
}

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		config appConfig.LoggerConfig
	}{
		{"production json", appConfig.LoggerConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"development console", appConfig.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"}},
		{"stderr output", appConfig.LoggerConfig{Level: "warn", Format: "json", Output: "stderr"}},
		{"invalid level falls back to info", appConfig.LoggerConfig{Level: "loud", Format: "json"}},
		{"empty config", appConfig.LoggerConfig{}},
		{"case insensitive level", appConfig.LoggerConfig{Level: "INFO", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithConfig(tt.config)
			require.NoError(t, err)
			require.NotNil(t, logger)

			logger.Infow("circle created", "circle_id", "c1")
		})
	}
}

func TestNewWithConfig_LevelFiltering(t *testing.T) {
	logger, err := NewWithConfig(appConfig.LoggerConfig{Level: "warn", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	core := logger.Desugar().Core()
	assert.False(t, core.Enabled(0), "info should be filtered")
	assert.True(t, core.Enabled(1), "warn should pass")
}

func TestNewWithConfig_FileOutputIsRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kurukatsu.log")
	cfg := appConfig.LoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}

	logger, err := NewWithConfig(cfg)
	require.NoError(t, err)

	logger.Infow("join request approved", "request_id", "r1")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id":"r1"`)
	assert.Contains(t, string(data), "join request approved")
}
