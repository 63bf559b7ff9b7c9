package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalEntities    int            `json:"total_entities"`
	EntitiesByKind   map[string]int `json:"entities_by_kind"`
	EntitiesByStatus map[string]int `json:"entities_by_status"`
	Favorites        int            `json:"favorites"`
	NeedingAirDate   int            `json:"needing_air_date"`
	NeedingRelease   int            `json:"needing_release_date"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entities, err := h.db.GetAllEntities()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get entities")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats := controllers.BuildStats(entities)

	shows, err := h.db.GetShowsNeedingAirDate()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get shows needing air date")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	movies, err := h.db.GetMoviesNeedingReleaseDate()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get movies needing release date")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalEntities:    stats.TotalEntities,
		EntitiesByKind:   stats.ByKind,
		EntitiesByStatus: stats.ByStatus,
		Favorites:        stats.Favorites,
		NeedingAirDate:   len(shows),
		NeedingRelease:   len(movies),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
