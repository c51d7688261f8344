package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/notification"
)

type NotificationHandler struct {
	service notification.Service
	logger  zerolog.Logger
}

func NewNotificationHandler(service notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	feed, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": feed.Notifications,
		"unreadCount":   feed.UnreadCount,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "Notification ID is required")
		return
	}

	notif, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to mark notification as read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Notification marked as read",
		"notification": notif,
	})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.MarkAllRead(r.Context()); err != nil {
		writeServiceError(w, h.logger, err, "Failed to mark notifications as read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All notifications marked as read",
	})
}
