package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/controllers"
)

// RefreshHandler triggers a resolver pass outside the cron schedule.
// Request deduplication inside the resolver makes overlapping passes safe.
type RefreshHandler struct {
	resolverCtrl *controllers.ResolverController
	logger       *logrus.Logger
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(resolverCtrl *controllers.ResolverController, logger *logrus.Logger) *RefreshHandler {
	return &RefreshHandler{
		resolverCtrl: resolverCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles the refresh endpoint
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	go func() {
		if err := h.resolverCtrl.ResolveMissing(context.Background()); err != nil {
			h.logger.WithError(err).Error("Manual resolve failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "refresh started"})
}
