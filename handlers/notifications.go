package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"onair/internal/database"
)

// NotificationsHandler serves the notification delivery history.
type NotificationsHandler struct {
	repo *database.NotificationRepository
}

// NewNotificationsHandler creates a new notifications handler. repo may be
// nil when the history database is disabled.
func NewNotificationsHandler(repo *database.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{repo: repo}
}

// ListNotifications returns recent notification deliveries, newest first.
// GET /api/notifications?limit=N
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Notification history is not enabled",
		})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Invalid limit: " + v,
			})
			return
		}
		limit = n
	}

	notifications, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": "Failed to list notifications: " + err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": notifications,
		"total":         len(notifications),
	})
}
