package cmd

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != internal.StoragePostgres {
		return fmt.Errorf("migrate: storage driver is %q, migrations only apply to %q", cfg.Storage.Driver, internal.StoragePostgres)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Storage.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	direction := "up"
	if migrateRollback {
		direction = "down"
	}

	if err := goose.RunContext(ctx, direction, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", direction, err)
	}

	logger.LoggerWrapper().Info("migration finished", "direction", direction, "dir", migrateDir)
	return nil
}
