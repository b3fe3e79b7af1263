// Package migrate provides database schema management.
package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/database/config"
	joinRequestModel "github.com/festy23/kurukatsu/internal/joinrequest/model"
	memberModel "github.com/festy23/kurukatsu/internal/member/model"
	userModel "github.com/festy23/kurukatsu/internal/user/model"
)

// pendingIndexSQL mirrors uq_join_requests_pending from the SQL migrations.
const pendingIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS uq_join_requests_pending
	ON join_requests (circle_id, user_id) WHERE status = 'pending'`

// Migrate brings the schema up to date for the configured driver: SQL
// migrations for postgres, gorm AutoMigrate for sqlite.
func Migrate(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if cfg.Driver == config.DriverSQLite {
		return AutoMigrate(db)
	}
	return Up(db, cfg.MigrationsPath)
}

// Up applies golang-migrate SQL migrations from migrationsDir to a PostgreSQL database.
func Up(db *gorm.DB, migrationsDir string) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	migrationsPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	if _, statErr := os.Stat(migrationsPath); os.IsNotExist(statErr) {
		return fmt.Errorf("migrations directory does not exist: %s", migrationsPath)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// AutoMigrate creates the schema from the gorm models, including the
// pending join request partial unique index.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	err := db.AutoMigrate(
		&circleModel.Circle{},
		&memberModel.Member{},
		&userModel.User{},
		&userModel.CircleLink{},
		&joinRequestModel.JoinRequest{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	if err := db.Exec(pendingIndexSQL).Error; err != nil {
		return fmt.Errorf("failed to create pending request index: %w", err)
	}
	return nil
}
