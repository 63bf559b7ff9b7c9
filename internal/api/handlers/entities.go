package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/models"
)

// EntitiesHandler exposes the entity store mutation API to the
// presentation layer
type EntitiesHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewEntitiesHandler creates a new entities handler
func NewEntitiesHandler(db *models.Database, logger *logrus.Logger) *EntitiesHandler {
	return &EntitiesHandler{
		db:     db,
		logger: logger,
	}
}

// AddEntityRequest is the payload for adding an entity to the watchlist
type AddEntityRequest struct {
	Kind      models.Kind   `json:"kind"`
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	PosterURL *string       `json:"poster_url"`
	Status    models.Status `json:"status"` // optional, defaults to plan_to_watch

	// Manga
	TotalChapters int `json:"total_chapters"`
	TotalVolumes  int `json:"total_volumes"`

	// Book
	TotalPages int      `json:"total_pages"`
	Authors    []string `json:"authors"`

	// Movie / show runtime metadata
	RuntimeMinutes  *int  `json:"runtime_minutes"`
	EpisodeRunTimes []int `json:"episode_run_times"`
}

// episodeRequest is the payload for (un)marking a watched episode
type episodeRequest struct {
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	EpisodeID string `json:"episode_id"`
}

// watchedRequest is the payload for setting a movie's watched timestamp
type watchedRequest struct {
	WatchedAt *time.Time `json:"watched_at"`
}

// HandleCollection handles /api/entities (list and add)
func (h *EntitiesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleItem handles /api/entities/{kind}/{id}[/{action}]
func (h *EntitiesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/entities/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	kind := models.Kind(parts[0])
	if !models.ValidKind(kind) {
		http.Error(w, "Unknown media kind", http.StatusBadRequest)
		return
	}
	id := parts[1]

	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			h.get(w, kind, id)
		case http.MethodDelete:
			h.remove(w, kind, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	action := parts[2]
	switch {
	case action == "episodes" && kind == models.KindShow:
		h.episodes(w, r, id)
	case r.Method != http.MethodPost:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case action == "status":
		h.updateStatus(w, r, kind, id)
	case action == "progress":
		h.updateProgress(w, r, kind, id)
	case action == "favorite":
		h.apply(w, h.db.ToggleFavorite(kind, id))
	case action == "toggle-completed":
		h.apply(w, h.db.ToggleCompleted(kind, id))
	case action == "toggle-watching":
		h.apply(w, h.db.ToggleWatching(kind, id))
	case action == "watched" && kind == models.KindMovie:
		h.movieWatched(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *EntitiesHandler) list(w http.ResponseWriter, r *http.Request) {
	var entities []*models.Entity
	var err error

	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind := models.Kind(kindParam)
		if !models.ValidKind(kind) {
			http.Error(w, "Unknown media kind", http.StatusBadRequest)
			return
		}
		entities, err = h.db.GetEntitiesByKind(kind)
	} else {
		entities, err = h.db.GetAllEntities()
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list entities")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if entities == nil {
		entities = []*models.Entity{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entities)
}

func (h *EntitiesHandler) add(w http.ResponseWriter, r *http.Request) {
	var req AddEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidKind(req.Kind) || req.ID == "" {
		http.Error(w, "kind and id are required", http.StatusBadRequest)
		return
	}

	entity := &models.Entity{
		ID:              req.ID,
		Kind:            req.Kind,
		Title:           req.Title,
		PosterURL:       req.PosterURL,
		Status:          req.Status,
		TotalChapters:   req.TotalChapters,
		TotalVolumes:    req.TotalVolumes,
		TotalPages:      req.TotalPages,
		Authors:         req.Authors,
		RuntimeMinutes:  req.RuntimeMinutes,
		EpisodeRunTimes: req.EpisodeRunTimes,
	}

	if err := h.db.AddEntity(entity); err != nil {
		h.logger.WithError(err).Error("Failed to add entity")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntitiesHandler) get(w http.ResponseWriter, kind models.Kind, id string) {
	entity, err := h.db.GetEntity(kind, id)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entity)
}

func (h *EntitiesHandler) remove(w http.ResponseWriter, kind models.Kind, id string) {
	h.apply(w, h.db.RemoveEntity(kind, id))
}

func (h *EntitiesHandler) updateStatus(w http.ResponseWriter, r *http.Request, kind models.Kind, id string) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidStatus(req.Status) {
		http.Error(w, "Unknown status", http.StatusBadRequest)
		return
	}
	h.apply(w, h.db.UpdateStatus(kind, id, req.Status))
}

func (h *EntitiesHandler) updateProgress(w http.ResponseWriter, r *http.Request, kind models.Kind, id string) {
	var req models.ProgressUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.apply(w, h.db.UpdateProgress(kind, id, req))
}

func (h *EntitiesHandler) episodes(w http.ResponseWriter, r *http.Request, id string) {
	var req episodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.apply(w, h.db.MarkEpisodeWatched(id, req.Season, req.Episode, req.EpisodeID))
	case http.MethodDelete:
		h.apply(w, h.db.UnmarkEpisodeWatched(id, req.Season, req.Episode))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EntitiesHandler) movieWatched(w http.ResponseWriter, r *http.Request, id string) {
	var req watchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.apply(w, h.db.SetMovieWatched(id, req.WatchedAt))
}

// apply finishes a mutation request. Store-level no-ops (unknown id,
// duplicate insert) still return 204: UI actions can race with deletion
// and must never see an error for it.
func (h *EntitiesHandler) apply(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.WithError(err).Error("Mutation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
