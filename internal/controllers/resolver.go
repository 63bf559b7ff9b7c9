package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tracknarr/tracknarr/internal/metrics"
	"github.com/tracknarr/tracknarr/internal/models"
)

// Provider fetches minimal release metadata for a single entity. A nil date
// with a nil error means the provider answered but knows no upcoming date.
type Provider interface {
	FetchShowMinimal(ctx context.Context, id string) (*string, error)
	FetchMovieMinimal(ctx context.Context, id string) (*string, error)
}

// ResolverController fills in missing cached release dates. Each run computes
// the needs-fetch set from the store, fetches every entry, and only then
// applies the writes — fetch completions never mutate the store while the
// set is still being read.
type ResolverController struct {
	db       *models.Database
	provider Provider
	group    singleflight.Group
	noDate   *cache.Cache
	logger   *logrus.Logger
}

// NewResolverController creates a new resolver controller. noDateRecheck
// bounds how often an entity that keeps resolving to "no date" is re-asked;
// it stays in the needs-fetch set the whole time.
func NewResolverController(db *models.Database, provider Provider, noDateRecheck time.Duration, logger *logrus.Logger) *ResolverController {
	return &ResolverController{
		db:       db,
		provider: provider,
		noDate:   cache.New(noDateRecheck, noDateRecheck),
		logger:   logger,
	}
}

// dateWrite is a deferred cached-date write produced by a completed fetch
type dateWrite struct {
	kind  models.Kind
	id    string
	field models.DateField
	date  string
}

// ResolveMissing runs one resolver pass. Fetch failures are absorbed: the
// entity stays in the needs-fetch set and is retried on the next pass.
func (c *ResolverController) ResolveMissing(ctx context.Context) error {
	shows, err := c.db.GetShowsNeedingAirDate()
	if err != nil {
		return err
	}
	movies, err := c.db.GetMoviesNeedingReleaseDate()
	if err != nil {
		return err
	}

	pending := append(shows, movies...)
	if len(pending) == 0 {
		c.logger.Debug("No entities need a release date")
		return nil
	}

	c.logger.WithField("count", len(pending)).Info("Resolving missing release dates")

	writes := make(chan dateWrite, len(pending))
	var wg sync.WaitGroup
	for _, entity := range pending {
		wg.Add(1)
		go func(entity *models.Entity) {
			defer wg.Done()
			c.fetchOne(ctx, entity, writes)
		}(entity)
	}
	wg.Wait()
	close(writes)

	applied := 0
	for write := range writes {
		wrote, err := c.db.SetCachedDate(write.kind, write.id, write.field, write.date)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"kind": write.kind,
				"id":   write.id,
			}).Error("Failed to write cached date")
			continue
		}
		if wrote {
			applied++
			metrics.DatesResolved.WithLabelValues(string(write.kind)).Inc()
		}
	}

	c.logger.WithFields(logrus.Fields{
		"pending": len(pending),
		"applied": applied,
	}).Info("Resolver pass completed")
	return nil
}

// fetchOne asks the provider for one entity's date and queues the write.
// Requests are deduplicated by store key, so overlapping passes (cron overlap,
// manual refresh) share a single in-flight request per entity.
func (c *ResolverController) fetchOne(ctx context.Context, entity *models.Entity, writes chan<- dateWrite) {
	key := entity.Key

	if _, found := c.noDate.Get(key); found {
		metrics.ReleaseFetches.WithLabelValues(string(entity.Kind), metrics.OutcomeSkipped).Inc()
		return
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		switch entity.Kind {
		case models.KindShow:
			return c.provider.FetchShowMinimal(ctx, entity.ID)
		case models.KindMovie:
			return c.provider.FetchMovieMinimal(ctx, entity.ID)
		}
		return (*string)(nil), nil
	})
	if err != nil {
		metrics.ReleaseFetches.WithLabelValues(string(entity.Kind), metrics.OutcomeError).Inc()
		c.logger.WithError(err).WithFields(logrus.Fields{
			"kind":  entity.Kind,
			"id":    entity.ID,
			"title": entity.Title,
		}).Warn("Release date fetch failed, will retry on next pass")
		return
	}

	date, _ := result.(*string)
	if date == nil {
		// Provider has no upcoming date (ended show, unscheduled movie).
		// The entity stays in the needs-fetch set; the cache only throttles
		// how soon we ask again.
		metrics.ReleaseFetches.WithLabelValues(string(entity.Kind), metrics.OutcomeNoDate).Inc()
		c.noDate.SetDefault(key, struct{}{})
		return
	}

	metrics.ReleaseFetches.WithLabelValues(string(entity.Kind), metrics.OutcomeResolved).Inc()

	field := models.DateFieldNextAir
	if entity.Kind == models.KindMovie {
		field = models.DateFieldRelease
	}
	writes <- dateWrite{kind: entity.Kind, id: entity.ID, field: field, date: *date}
}
