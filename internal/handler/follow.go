package handler

import (
	"log/slog"
	"net/http"

	"toppharma/internal/domain/models"
	"toppharma/internal/domain/services"
	"toppharma/internal/httputil"
)

// FollowHandler serves a user's follows and notifications.
type FollowHandler struct {
	follows       services.FollowService
	notifications services.NotificationService
	logger        *slog.Logger
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(follows services.FollowService, notifications services.NotificationService, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{
		follows:       follows,
		notifications: notifications,
		logger:        logger,
	}
}

// GET /api/users/me/follows
func (h *FollowHandler) ListFollows(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	follows, err := h.follows.List(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, follows)
}

// Follow creates a follow. Following something twice returns the
// existing follow with 200 instead of 201.
// POST /api/users/me/follows
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.FollowRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	follow, created, err := h.follows.Follow(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, follow)
}

// DELETE /api/users/me/follows/{type}/{id}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entityType := models.EntityType(r.PathValue("type"))
	if err := h.follows.Unfollow(r.Context(), userID, entityType, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type notificationsResponse struct {
	Notifications []models.UserNotification `json:"notifications"`
	UnreadCount   int64                     `json:"unread_count"`
}

// GET /api/users/me/notifications?unread=true
func (h *FollowHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.notifications.List(r.Context(), userID, r.URL.Query().Get("unread") == "true")
	if err != nil {
		handleError(w, err)
		return
	}
	unread, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notificationsResponse{Notifications: list, UnreadCount: unread})
}

// POST /api/users/me/notifications/{id}/read
func (h *FollowHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUID(w, r.PathValue("id"), "notification ID")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/users/me/notifications/read-all
func (h *FollowHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// DELETE /api/users/me/notifications/{id}
func (h *FollowHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUID(w, r.PathValue("id"), "notification ID")
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
