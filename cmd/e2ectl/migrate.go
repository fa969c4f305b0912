package main

import (
	"fmt"
	"strconv"

	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/spf13/cobra"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|VERSION]",
	Short: "Apply the forum schema to a local database",
	Long: `Applies the forum schema migrations. Only meant for a disposable local
database; shared environments are migrated by the application itself.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "path", "./migrations", "Directory holding the migration files")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Env != "local" {
		return fmt.Errorf("refusing to migrate %q: migrations only run against the local environment", cfg.Env)
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.HealthCheck(cmd.Context()); err != nil {
		return err
	}
	defer func() {
		stats := db.Stats()
		log.Debug().
			Int("open_conns", stats.OpenConnections).
			Int("max_open_conns", stats.MaxOpenConnections).
			Int64("wait_count", stats.WaitCount).
			Msg("Database pool after migration")
	}()

	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}

	switch direction {
	case "up":
		return db.RunMigrations(migrationsPath)
	case "down":
		return db.MigrateDown(migrationsPath)
	default:
		version, err := strconv.ParseUint(direction, 10, 32)
		if err != nil {
			return fmt.Errorf("expected up, down or a version number, got %q", direction)
		}
		return db.MigrateToVersion(migrationsPath, uint(version))
	}
}
