package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/api/handlers"
	"github.com/tracknarr/tracknarr/internal/api/middleware"
	"github.com/tracknarr/tracknarr/internal/config"
	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/models"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	db           *models.Database
	resolverCtrl *controllers.ResolverController
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, resolverCtrl *controllers.ResolverController, logger *logrus.Logger) *Server {
	s := &Server{
		db:           db,
		resolverCtrl: resolverCtrl,
		logger:       logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Entity store API
	entitiesHandler := handlers.NewEntitiesHandler(s.db, s.logger)
	mux.HandleFunc("/api/entities", entitiesHandler.HandleCollection)
	mux.HandleFunc("/api/entities/", entitiesHandler.HandleItem)

	// Derived views
	calendarHandler := handlers.NewCalendarHandler(s.db, s.logger)
	mux.HandleFunc("/api/calendar", calendarHandler.ServeHTTP)

	statsHandler := handlers.NewStatsHandler(s.db, s.logger)
	mux.HandleFunc("/api/stats", statsHandler.ServeHTTP)

	// Manual resolver trigger
	refreshHandler := handlers.NewRefreshHandler(s.resolverCtrl, s.logger)
	mux.HandleFunc("/api/refresh", refreshHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
