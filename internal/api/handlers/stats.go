package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/models"
)

// StatsHandler serves aggregated consumption statistics
type StatsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(db *models.Database, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		db:     db,
		logger: logger,
	}
}

// ServeHTTP handles the stats endpoint
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(controllers.BuildStats(entities))
}
