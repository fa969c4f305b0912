package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nanoreddit-ui-autotests/internal/api"
	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/nanoreddit-ui-autotests/internal/mocks"
	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/nanoreddit-ui-autotests/internal/validation"
	"github.com/nanoreddit-ui-autotests/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadServer(os.Getenv("TEST_ENV"))
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info().Dur("lag", cfg.Lag).Msg("Starting forum stand-in server...")

	// In-memory forum whose writes become visible after the configured lag
	forum := mocks.NewForum(cfg.Lag)

	if email := os.Getenv("STUB_ADMIN_EMAIL"); email != "" {
		if err := seedAdmin(forum, email, os.Getenv("STUB_ADMIN_PASSWORD")); err != nil {
			log.Fatal().Err(err).Str("email", email).Msg("Failed to seed admin")
		}
		log.Info().Str("email", email).Msg("Admin seeded")
	}

	// Initialize router
	router := api.NewRouter(forum, validation.NewValidator(), log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Interface("stats", forum.Stats(ctx)).Msg("Server exited gracefully")
}

func seedAdmin(forum *mocks.Forum, email, password string) error {
	ctx := context.Background()
	user := models.RandomUserWithPassword(password)
	if password == "" {
		user = models.RandomUser()
	}
	user.Email = email

	if _, err := forum.Register(ctx, user); err != nil {
		return err
	}
	_, err := forum.Repositories().User.SetRole(ctx, email, config.DefaultProvisionConfig().AdminRole)
	return err
}
