// Package metrics provides Prometheus metrics for the tracking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace for all tracknarr metrics
	namespace = "tracknarr"
)

var (
	// ReleaseFetches tracks release-date lookups against the metadata provider
	ReleaseFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_fetches_total",
			Help:      "Total number of release-date fetch attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// DatesResolved tracks cached-date writes that actually happened
	DatesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_dates_resolved_total",
			Help:      "Total number of release dates written into the entity store",
		},
		[]string{"kind"},
	)

	// TrackedEntities tracks the current number of entities per kind
	TrackedEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_entities",
			Help:      "Number of entities currently tracked, by kind",
		},
		[]string{"kind"},
	)
)

// Fetch outcome label values
const (
	OutcomeResolved = "resolved"
	OutcomeNoDate   = "no_date"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
)
