package handlers

import (
	"encoding/json"
	"net/http"

	appMiddleware "github.com/osanchez-dev/revisia/internal/api/middlewares"
	"github.com/osanchez-dev/revisia/internal/services"
)

type StatisticsHandler struct {
	users *services.UserService
}

func NewStatisticsHandler(users *services.UserService) *StatisticsHandler {
	return &StatisticsHandler{users: users}
}

// GetStatistics returns the caller's rolling counters: uploads, reviews
// received, and the running average score.
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.users.GetStatistics(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
