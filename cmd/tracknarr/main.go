package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tracknarr/tracknarr/internal/api"
	"github.com/tracknarr/tracknarr/internal/config"
	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/models"
	"github.com/tracknarr/tracknarr/internal/scheduler"
	"github.com/tracknarr/tracknarr/internal/services/metadata"
	"github.com/tracknarr/tracknarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Tracknarr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize metadata provider
	metadataClient, err := metadata.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize metadata client: %w", err)
	}
	logger.Info("Metadata client initialized")

	// 5. Initialize resolver
	noDateRecheck := time.Duration(cfg.NoDateRecheckHours) * time.Hour
	resolverCtrl := controllers.NewResolverController(db, metadataClient, noDateRecheck, logger)
	logger.Info("Resolver initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(resolverCtrl, db, cfg.RefreshIntervalHours, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, resolverCtrl, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Tracknarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Tracknarr stopped")
	return nil
}
