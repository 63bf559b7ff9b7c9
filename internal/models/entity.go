package models

import "time"

// DateLayout is the calendar date format used for cached release dates
const DateLayout = "2006-01-02"

// Entity represents a tracked media item (show, movie, manga or book).
// Kind-specific fields are nil/zero for the other kinds.
type Entity struct {
	Key  string `boltholdKey:"Key"` // "<kind>:<id>"
	ID   string // provider-assigned id, unique within its kind
	Kind Kind   `boltholdIndex:"Kind"`

	Title     string
	PosterURL *string
	Status    Status `boltholdIndex:"Status"`
	Favorite  bool

	// TV show specific fields
	WatchedEpisodes []WatchedEpisode // unique per (season, episode)
	NextAirDate     *string          // YYYY-MM-DD, write-once cache
	EpisodeRunTimes []int            // minutes, for statistics

	// Movie specific fields
	WatchedAt      *time.Time
	ReleaseDate    *string // YYYY-MM-DD, write-once cache
	RuntimeMinutes *int

	// Manga specific fields
	CurrentChapter int
	CurrentVolume  int
	TotalChapters  int
	TotalVolumes   int

	// Book specific fields
	CurrentPage int
	TotalPages  int
	Authors     []string

	// Metadata
	AddedAt   time.Time
	UpdatedAt time.Time
}

// WatchedEpisode records a single watched episode of a show
type WatchedEpisode struct {
	SeasonNumber  int
	EpisodeNumber int
	EpisodeID     string
	WatchedAt     time.Time
}

// EntityKey builds the store key for a (kind, id) pair
func EntityKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

// CachedDate returns the cached release date field for the entity's kind,
// or nil for kinds without a release concept.
func (e *Entity) CachedDate() *string {
	switch e.Kind {
	case KindShow:
		return e.NextAirDate
	case KindMovie:
		return e.ReleaseDate
	}
	return nil
}

// HasWatchedEpisode reports whether (season, episode) is already recorded
func (e *Entity) HasWatchedEpisode(season, episode int) bool {
	for _, we := range e.WatchedEpisodes {
		if we.SeasonNumber == season && we.EpisodeNumber == episode {
			return true
		}
	}
	return false
}

// ProgressUpdate is a partial progress mutation; nil fields are left untouched
type ProgressUpdate struct {
	// Manga
	CurrentChapter *int
	CurrentVolume  *int
	TotalChapters  *int
	TotalVolumes   *int

	// Book
	CurrentPage *int
	TotalPages  *int

	// Movie / show runtime metadata (for statistics)
	RuntimeMinutes  *int
	EpisodeRunTimes []int
}

// clampProgress keeps a counter in [0, total] when total is known and positive
func clampProgress(value, total int) int {
	if value < 0 {
		return 0
	}
	if total > 0 && value > total {
		return total
	}
	return value
}
