package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nanoreddit-ui-autotests/internal/apiclient"
	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/database"
	"github.com/nanoreddit-ui-autotests/internal/repository"
	"github.com/nanoreddit-ui-autotests/internal/service"
	"github.com/nanoreddit-ui-autotests/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	testEnv string

	// Global state
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "e2ectl",
	Short: "Maintenance commands for the nanoreddit e2e suite",
	Long: `e2ectl prepares and cleans the environment the browser suite runs against:
schema migrations, test-data seeding, leftover cleanup and the environment report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(testEnv)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.New(cfg.Log)
		return nil
	},
}

func init() {
	defaultEnv := os.Getenv("TEST_ENV")
	if defaultEnv == "" {
		defaultEnv = "local"
	}
	rootCmd.PersistentFlags().StringVarP(&testEnv, "env", "e", defaultEnv, "Target environment (local, dev, stg, prod-test)")

	rootCmd.AddCommand(migrateCmd, cleanupCmd, seedCmd, envCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// openServices connects to the store and wires the services. The caller
// closes the returned database
func openServices() (*service.Services, *database.DB, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos := repository.New(db)
	api := apiclient.New(cfg.App, log)
	return service.NewServices(repos, api, cfg, log), db, nil
}
