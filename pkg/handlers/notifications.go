package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/repositories"
)

// NotificationHandler serves the signed-in actor's notification feed.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, logger: logger}
}

// RegisterRoutes registers notification routes on the given mux.
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notifications", h.List)
	mux.HandleFunc("POST /api/notifications/{notificationID}/read", h.MarkRead)
}

// List handles GET /api/notifications for the current actor.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := models.GetActor(r.Context())
	if !ok {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.notificationRepo.ListByRecipient(r.Context(), actor.Email, unreadOnly, 100)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications}); err != nil {
		h.logger.Error("Failed to encode notifications response", zap.Error(err))
	}
}

// MarkRead handles POST /api/notifications/{notificationID}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("notificationID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid notification id")
		return
	}

	if err := h.notificationRepo.MarkRead(r.Context(), notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
