package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/controllers"
	"github.com/tracknarr/tracknarr/internal/models"
)

// CalendarHandler serves the derived release calendar
type CalendarHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(db *models.Database, logger *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{
		db:     db,
		logger: logger,
	}
}

// CalendarResponse represents the calendar endpoint response
type CalendarResponse struct {
	Days    map[string][]controllers.CalendarItem `json:"days"`
	Marks   map[string][]models.Kind              `json:"marks"`
	Total   int                                   `json:"total"`
	Horizon int                                   `json:"horizon_days,omitempty"`
}

// ServeHTTP handles the calendar endpoint. An optional ?days=N query
// restricts the output to [today, today+N).
func (h *CalendarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	calendar := controllers.BuildCalendar(entities)

	horizon := 0
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days < 1 {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		horizon = days
		today := time.Now()
		from := today.Format(models.DateLayout)
		to := today.AddDate(0, 0, days).Format(models.DateLayout)
		calendar = calendar.Window(from, to)
	}

	response := CalendarResponse{
		Days:    calendar.Days,
		Marks:   calendar.Marks,
		Total:   calendar.Total(),
		Horizon: horizon,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
