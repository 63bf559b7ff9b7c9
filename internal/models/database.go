package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store that holds every tracked entity.
// Each mutation is a single bbolt write transaction, so the change is on
// disk before the call returns. Reads decode into fresh structs: callers
// always receive snapshots, never references into live state.
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// mutate loads the entity for (kind, id), applies fn and writes it back.
// An unknown key is a silent no-op: UI actions can race with deletion.
func (db *Database) mutate(kind Kind, id string, fn func(*Entity)) error {
	var entity Entity
	err := db.store.Get(EntityKey(kind, id), &entity)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	fn(&entity)
	entity.UpdatedAt = time.Now()
	return db.store.Update(entity.Key, &entity)
}

// AddEntity inserts a new tracked entity. Re-adding an already tracked
// (kind, id) is a no-op; the existing entity is left untouched.
func (db *Database) AddEntity(entity *Entity) error {
	if !ValidKind(entity.Kind) {
		return fmt.Errorf("invalid kind: %q", entity.Kind)
	}
	if entity.Status == "" {
		entity.Status = StatusPlanToWatch
	}
	if !ValidStatus(entity.Status) {
		entity.Status = StatusPlanToWatch
	}

	entity.Key = EntityKey(entity.Kind, entity.ID)
	entity.AddedAt = time.Now()
	entity.UpdatedAt = entity.AddedAt

	err := db.store.Insert(entity.Key, entity)
	if errors.Is(err, bolthold.ErrKeyExists) {
		return nil
	}
	return err
}

// RemoveEntity deletes an entity and everything it owns (the watched-episode
// set travels with the record, so the delete is atomic). Unknown id is a no-op.
func (db *Database) RemoveEntity(kind Kind, id string) error {
	err := db.store.Delete(EntityKey(kind, id), &Entity{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil
	}
	return err
}

// GetEntity retrieves a single entity by (kind, id)
func (db *Database) GetEntity(kind Kind, id string) (*Entity, error) {
	var entity Entity
	err := db.store.Get(EntityKey(kind, id), &entity)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetAllEntities retrieves a snapshot of every tracked entity
func (db *Database) GetAllEntities() ([]*Entity, error) {
	var entities []*Entity
	err := db.store.Find(&entities, nil)
	return entities, err
}

// GetEntitiesByKind retrieves a snapshot of all entities of one kind
func (db *Database) GetEntitiesByKind(kind Kind) ([]*Entity, error) {
	var entities []*Entity
	err := db.store.Find(&entities, bolthold.Where("Kind").Eq(kind))
	return entities, err
}

// UpdateStatus moves an entity to the given status. Every status-to-status
// transition is legal; an invalid status value is ignored.
func (db *Database) UpdateStatus(kind Kind, id string, status Status) error {
	if !ValidStatus(status) {
		return nil
	}
	return db.mutate(kind, id, func(e *Entity) {
		e.Status = status
	})
}

// ToggleCompleted flips an entity between completed and plan_to_watch
func (db *Database) ToggleCompleted(kind Kind, id string) error {
	return db.mutate(kind, id, func(e *Entity) {
		e.Status = ToggledCompleted(e.Status)
	})
}

// ToggleWatching flips an entity between watching and plan_to_watch
func (db *Database) ToggleWatching(kind Kind, id string) error {
	return db.mutate(kind, id, func(e *Entity) {
		e.Status = ToggledWatching(e.Status)
	})
}

// ToggleFavorite flips the favorite flag
func (db *Database) ToggleFavorite(kind Kind, id string) error {
	return db.mutate(kind, id, func(e *Entity) {
		e.Favorite = !e.Favorite
	})
}

// UpdateProgress applies a partial progress update. Counters are clamped to
// [0, total] when the total is known and positive. Status never changes here.
func (db *Database) UpdateProgress(kind Kind, id string, update ProgressUpdate) error {
	return db.mutate(kind, id, func(e *Entity) {
		if update.TotalChapters != nil && *update.TotalChapters >= 0 {
			e.TotalChapters = *update.TotalChapters
		}
		if update.TotalVolumes != nil && *update.TotalVolumes >= 0 {
			e.TotalVolumes = *update.TotalVolumes
		}
		if update.TotalPages != nil && *update.TotalPages >= 0 {
			e.TotalPages = *update.TotalPages
		}
		if update.CurrentChapter != nil {
			e.CurrentChapter = clampProgress(*update.CurrentChapter, e.TotalChapters)
		}
		if update.CurrentVolume != nil {
			e.CurrentVolume = clampProgress(*update.CurrentVolume, e.TotalVolumes)
		}
		if update.CurrentPage != nil {
			e.CurrentPage = clampProgress(*update.CurrentPage, e.TotalPages)
		}
		if update.RuntimeMinutes != nil && *update.RuntimeMinutes >= 0 {
			runtime := *update.RuntimeMinutes
			e.RuntimeMinutes = &runtime
		}
		if len(update.EpisodeRunTimes) > 0 {
			e.EpisodeRunTimes = append([]int(nil), update.EpisodeRunTimes...)
		}
	})
}

// MarkEpisodeWatched records a watched episode on a show. Inserting a
// duplicate (season, episode) is a no-op, as is marking on a non-show.
func (db *Database) MarkEpisodeWatched(id string, season, episode int, episodeID string) error {
	return db.mutate(KindShow, id, func(e *Entity) {
		if e.HasWatchedEpisode(season, episode) {
			return
		}
		e.WatchedEpisodes = append(e.WatchedEpisodes, WatchedEpisode{
			SeasonNumber:  season,
			EpisodeNumber: episode,
			EpisodeID:     episodeID,
			WatchedAt:     time.Now(),
		})
	})
}

// UnmarkEpisodeWatched removes a watched episode record; absent entry is a no-op
func (db *Database) UnmarkEpisodeWatched(id string, season, episode int) error {
	return db.mutate(KindShow, id, func(e *Entity) {
		kept := e.WatchedEpisodes[:0]
		for _, we := range e.WatchedEpisodes {
			if we.SeasonNumber == season && we.EpisodeNumber == episode {
				continue
			}
			kept = append(kept, we)
		}
		e.WatchedEpisodes = kept
	})
}

// SetMovieWatched sets or clears the watched timestamp on a movie
func (db *Database) SetMovieWatched(id string, watchedAt *time.Time) error {
	return db.mutate(KindMovie, id, func(e *Entity) {
		e.WatchedAt = watchedAt
	})
}

// SetCachedDate fills a cached release date field, but only if it is
// currently unset. A later write never overwrites an earlier one, which is
// what makes concurrent out-of-order resolver completions safe. Reports
// whether the write happened; unknown id reports false without error.
func (db *Database) SetCachedDate(kind Kind, id string, field DateField, value string) (bool, error) {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return false, nil
	}

	wrote := false
	err := db.mutate(kind, id, func(e *Entity) {
		switch {
		case e.Kind == KindShow && field == DateFieldNextAir:
			if e.NextAirDate == nil {
				date := value
				e.NextAirDate = &date
				wrote = true
			}
		case e.Kind == KindMovie && field == DateFieldRelease:
			if e.ReleaseDate == nil {
				date := value
				e.ReleaseDate = &date
				wrote = true
			}
		}
	})
	return wrote, err
}

// GetShowsNeedingAirDate returns shows still status-relevant for the
// calendar whose next air date has not been cached yet.
func (db *Database) GetShowsNeedingAirDate() ([]*Entity, error) {
	shows, err := db.GetEntitiesByKind(KindShow)
	if err != nil {
		return nil, err
	}

	var needing []*Entity
	for _, show := range shows {
		if show.NextAirDate != nil {
			continue
		}
		switch show.Status {
		case StatusPlanToWatch, StatusWatching, StatusCompleted:
			needing = append(needing, show)
		}
	}
	return needing, nil
}

// GetMoviesNeedingReleaseDate returns movies still status-relevant whose
// release date has not been cached yet.
func (db *Database) GetMoviesNeedingReleaseDate() ([]*Entity, error) {
	movies, err := db.GetEntitiesByKind(KindMovie)
	if err != nil {
		return nil, err
	}

	var needing []*Entity
	for _, movie := range movies {
		if movie.ReleaseDate != nil {
			continue
		}
		switch movie.Status {
		case StatusPlanToWatch, StatusWatching:
			needing = append(needing, movie)
		}
	}
	return needing, nil
}
