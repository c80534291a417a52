package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/services"
)

// CorrectiveActionHandler serves remediation recording for failed checks.
type CorrectiveActionHandler struct {
	actions services.CorrectiveActionService
	logger  *zap.Logger
}

// NewCorrectiveActionHandler creates a new CorrectiveActionHandler.
func NewCorrectiveActionHandler(actions services.CorrectiveActionService, logger *zap.Logger) *CorrectiveActionHandler {
	return &CorrectiveActionHandler{actions: actions, logger: logger}
}

// RegisterRoutes registers corrective action routes on the given mux.
func (h *CorrectiveActionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checks/{checkID}/corrective-actions", h.RecordAction)
	mux.HandleFunc("GET /api/checks/{checkID}/corrective-actions", h.ListActions)
	mux.HandleFunc("POST /api/corrective-actions/{actionID}/complete", h.CompleteAction)
}

// RecordAction handles POST /api/checks/{checkID}/corrective-actions.
// The body is multipart/form-data so an evidence photo can ride along with
// the decision; the photo part is optional.
func (h *CorrectiveActionHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	checkID, err := uuid.Parse(r.PathValue("checkID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid check id")
		return
	}

	if err := r.ParseMultipartForm(12 << 20); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "expected multipart form")
		return
	}

	input := services.RecordActionInput{
		CheckID:     checkID,
		ActionType:  r.FormValue("action_type"),
		Description: r.FormValue("description"),
		Notes:       r.FormValue("notes"),
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		input.Photo = file
		input.PhotoFilename = header.Filename
	}

	action, err := h.actions.RecordAction(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, action); err != nil {
		h.logger.Error("Failed to encode corrective action response", zap.Error(err))
	}
}

// ListActions handles GET /api/checks/{checkID}/corrective-actions.
func (h *CorrectiveActionHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	checkID, err := uuid.Parse(r.PathValue("checkID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid check id")
		return
	}

	actions, err := h.actions.ListActions(r.Context(), checkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"corrective_actions": actions}); err != nil {
		h.logger.Error("Failed to encode corrective actions response", zap.Error(err))
	}
}

// CompleteAction handles POST /api/corrective-actions/{actionID}/complete.
func (h *CorrectiveActionHandler) CompleteAction(w http.ResponseWriter, r *http.Request) {
	actionID, err := uuid.Parse(r.PathValue("actionID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid action id")
		return
	}

	if err := h.actions.CompleteAction(r.Context(), actionID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
