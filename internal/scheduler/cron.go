package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/metrics"
	"github.com/tracknarr/tracknarr/internal/models"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron                 *cron.Cron
	resolverCtrl         *controllers.ResolverController
	db                   *models.Database
	refreshIntervalHours int
	logger               *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(resolverCtrl *controllers.ResolverController, db *models.Database, refreshIntervalHours int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:                 cron.New(),
		resolverCtrl:         resolverCtrl,
		db:                   db,
		refreshIntervalHours: refreshIntervalHours,
		logger:               logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every N hours: resolve missing release dates
	spec := fmt.Sprintf("0 */%d * * *", s.refreshIntervalHours)
	_, err := s.cron.AddFunc(spec, func() {
		s.runResolve()
	})
	if err != nil {
		return fmt.Errorf("failed to add resolve job: %w", err)
	}

	// Every hour: refresh the tracked-entities gauge
	_, err = s.cron.AddFunc("0 * * * *", func() {
		s.updateEntityGauge()
	})
	if err != nil {
		return fmt.Errorf("failed to add gauge job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial pass immediately
	go func() {
		s.updateEntityGauge()
		s.runResolve()
	}()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runResolve executes one resolver pass
func (s *Scheduler) runResolve() {
	s.logger.Info("Running scheduled release-date resolve")
	ctx := context.Background()

	if err := s.resolverCtrl.ResolveMissing(ctx); err != nil {
		s.logger.WithError(err).Error("Resolve job failed")
	} else {
		s.logger.Info("Resolve job completed successfully")
	}
}

// updateEntityGauge publishes per-kind entity counts
func (s *Scheduler) updateEntityGauge() {
	entities, err := s.db.GetAllEntities()
	if err != nil {
		s.logger.WithError(err).Error("Failed to count entities")
		return
	}

	counts := map[models.Kind]int{
		models.KindShow:  0,
		models.KindMovie: 0,
		models.KindManga: 0,
		models.KindBook:  0,
	}
	for _, entity := range entities {
		counts[entity.Kind]++
	}
	for kind, count := range counts {
		metrics.TrackedEntities.WithLabelValues(string(kind)).Set(float64(count))
	}
}
