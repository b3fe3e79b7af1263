// Package database opens gorm connections for the configured driver.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/festy23/kurukatsu/internal/database/config"
	"github.com/festy23/kurukatsu/internal/database/pool"
	"github.com/festy23/kurukatsu/pkg/retry"
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// New creates a new database connection using environment variables.
func New(ctx context.Context, logger *zap.SugaredLogger) (*gorm.DB, error) {
	return NewWithConfig(ctx, config.LoadConfigFromEnv(), logger)
}

// NewWithConfig opens a connection for cfg.Driver, retrying transient
// PostgreSQL startup failures, and applies pool settings.
func NewWithConfig(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, config.SanitizeError(err, cfg)
		}
		// sqlite serialises writers; a single connection also keeps :memory: databases shared
		cfg.MaxOpenConns, cfg.MaxIdleConns = 1, 1
	default:
		retryCfg := config.LoadRetryConfigFromEnv()
		retryCfg.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.Warnw("Database connection attempt failed, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", config.SanitizeError(err, cfg),
			)
		}
		connectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		dsn := config.BuildDSN(cfg)
		db, err = retry.DoWithResult(connectCtx, retryCfg, func() (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormCfg)
		})
		if err != nil {
			return nil, config.SanitizeError(err, cfg)
		}
	}

	poolCfg := pool.DefaultPoolConfig().WithLimits(cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err := pool.SetupConnectionPool(db, poolCfg); err != nil {
		return nil, fmt.Errorf("failed to setup connection pool: %w", err)
	}

	logger.Infow("Database connected", "driver", cfg.Driver)
	return db, nil
}

// HealthCheck verifies database connection availability.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close gracefully closes database connection.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// GetStats returns database connection pool statistics.
func GetStats(db *gorm.DB) (*sql.DBStats, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return &stats, nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint,
// for either PostgreSQL or SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
