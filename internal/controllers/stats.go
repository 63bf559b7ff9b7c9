package controllers

import (
	"github.com/tracknarr/tracknarr/internal/models"
)

// Stats aggregates consumption statistics over a store snapshot
type Stats struct {
	TotalEntities int            `json:"total_entities"`
	ByKind        map[string]int `json:"by_kind"`
	ByStatus      map[string]int `json:"by_status"`
	Favorites     int            `json:"favorites"`

	WatchedEpisodes  int `json:"watched_episodes"`
	WatchedMovies    int `json:"watched_movies"`
	WatchTimeMinutes int `json:"watch_time_minutes"`
	ChaptersRead     int `json:"chapters_read"`
	PagesRead        int `json:"pages_read"`
}

// BuildStats derives statistics purely from a store snapshot
func BuildStats(entities []*models.Entity) *Stats {
	stats := &Stats{
		ByKind:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	for _, entity := range entities {
		stats.TotalEntities++
		stats.ByKind[string(entity.Kind)]++
		stats.ByStatus[string(entity.Status)]++
		if entity.Favorite {
			stats.Favorites++
		}

		switch entity.Kind {
		case models.KindShow:
			watched := len(entity.WatchedEpisodes)
			stats.WatchedEpisodes += watched
			stats.WatchTimeMinutes += watched * meanRunTime(entity.EpisodeRunTimes)
		case models.KindMovie:
			if entity.WatchedAt != nil {
				stats.WatchedMovies++
				if entity.RuntimeMinutes != nil {
					stats.WatchTimeMinutes += *entity.RuntimeMinutes
				}
			}
		case models.KindManga:
			stats.ChaptersRead += entity.CurrentChapter
		case models.KindBook:
			stats.PagesRead += entity.CurrentPage
		}
	}

	return stats
}

// meanRunTime averages a show's per-episode runtimes; zero when unknown
func meanRunTime(runtimes []int) int {
	if len(runtimes) == 0 {
		return 0
	}
	sum := 0
	for _, minutes := range runtimes {
		sum += minutes
	}
	return sum / len(runtimes)
}
