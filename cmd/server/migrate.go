package main

import (
	"github.com/spf13/cobra"

	"github.com/festy23/kurukatsu/internal/database/database"
	"github.com/festy23/kurukatsu/internal/database/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewWithConfig(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := migrate.Migrate(db, cfg.Database); err != nil {
		return err
	}
	log.Infow("Migrations applied", "driver", cfg.Database.Driver)
	return nil
}
