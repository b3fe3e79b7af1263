package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: DefaultPoolConfig()},
		{name: "single connection", cfg: Config{MaxOpenConns: 1, MaxIdleConns: 1}},
		{name: "no idle", cfg: Config{MaxOpenConns: 4}},
		{name: "zero open", cfg: Config{}, wantErr: "MaxOpenConns must be greater than 0"},
		{name: "negative idle", cfg: Config{MaxOpenConns: 4, MaxIdleConns: -1}, wantErr: "non-negative"},
		{name: "idle above open", cfg: Config{MaxOpenConns: 2, MaxIdleConns: 3}, wantErr: "cannot be greater"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_WithLimits(t *testing.T) {
	cfg := DefaultPoolConfig().WithLimits(1, 1)
	assert.Equal(t, 1, cfg.MaxOpenConns)
	assert.Equal(t, 1, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, cfg.ConnMaxIdleTime)
}

func TestSetupConnectionPool(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, SetupConnectionPool(db, DefaultPoolConfig().WithLimits(1, 1)))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, sqlDB.Ping())
}

func TestSetupConnectionPool_RejectsInvalidConfig(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, SetupConnectionPool(db, DefaultPoolConfig()))

	err := SetupConnectionPool(db, Config{MaxOpenConns: 1, MaxIdleConns: 2})
	require.Error(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}
