package controllers

import (
	"testing"
	"time"

	"github.com/tracknarr/tracknarr/internal/models"
)

func intPtr(i int) *int { return &i }

func TestBuildStats(t *testing.T) {
	watchedAt := time.Date(2024, 4, 1, 20, 0, 0, 0, time.UTC)

	entities := []*models.Entity{
		{
			ID: "1", Kind: models.KindShow, Status: models.StatusWatching, Favorite: true,
			EpisodeRunTimes: []int{40, 50},
			WatchedEpisodes: []models.WatchedEpisode{
				{SeasonNumber: 1, EpisodeNumber: 1},
				{SeasonNumber: 1, EpisodeNumber: 2},
				{SeasonNumber: 1, EpisodeNumber: 3},
			},
		},
		{ID: "2", Kind: models.KindMovie, Status: models.StatusCompleted, WatchedAt: &watchedAt, RuntimeMinutes: intPtr(120)},
		{ID: "3", Kind: models.KindMovie, Status: models.StatusPlanToWatch},
		{ID: "4", Kind: models.KindManga, Status: models.StatusWatching, CurrentChapter: 42},
		{ID: "5", Kind: models.KindBook, Status: models.StatusOnHold, CurrentPage: 150},
	}

	stats := BuildStats(entities)

	if stats.TotalEntities != 5 {
		t.Errorf("Expected 5 entities, got %d", stats.TotalEntities)
	}
	if stats.ByKind["movie"] != 2 {
		t.Errorf("Expected 2 movies, got %d", stats.ByKind["movie"])
	}
	if stats.ByStatus["watching"] != 2 {
		t.Errorf("Expected 2 watching, got %d", stats.ByStatus["watching"])
	}
	if stats.Favorites != 1 {
		t.Errorf("Expected 1 favorite, got %d", stats.Favorites)
	}
	if stats.WatchedEpisodes != 3 {
		t.Errorf("Expected 3 watched episodes, got %d", stats.WatchedEpisodes)
	}
	if stats.WatchedMovies != 1 {
		t.Errorf("Expected 1 watched movie, got %d", stats.WatchedMovies)
	}
	// 3 episodes at mean 45 minutes + one 120 minute movie
	if stats.WatchTimeMinutes != 3*45+120 {
		t.Errorf("Expected %d watch minutes, got %d", 3*45+120, stats.WatchTimeMinutes)
	}
	if stats.ChaptersRead != 42 || stats.PagesRead != 150 {
		t.Errorf("Expected 42 chapters / 150 pages, got %d / %d", stats.ChaptersRead, stats.PagesRead)
	}
}

func TestBuildStatsEmptySnapshot(t *testing.T) {
	stats := BuildStats(nil)
	if stats.TotalEntities != 0 || stats.WatchTimeMinutes != 0 {
		t.Errorf("Expected zeroed stats, got %+v", stats)
	}
}
