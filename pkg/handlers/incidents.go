package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/services"
)

// IncidentHandler serves the legal-hold incident surfaces: listing open
// incidents, manual resolution and manager annotation.
type IncidentHandler struct {
	incidents services.IncidentService
	logger    *zap.Logger
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidents services.IncidentService, logger *zap.Logger) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, logger: logger}
}

// RegisterRoutes registers incident routes on the given mux.
func (h *IncidentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/incidents", h.ListOpen)
	mux.HandleFunc("GET /api/incidents/{incidentID}", h.Get)
	mux.HandleFunc("POST /api/incidents/{incidentID}/resolve", h.Resolve)
	mux.HandleFunc("POST /api/incidents/{incidentID}/notes", h.Annotate)
}

// ListOpen handles GET /api/incidents. Open incidents carry the blocked
// menu item snapshot so the POS layer can keep those items off sale.
func (h *IncidentHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidents.ListOpen(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"incidents": incidents}); err != nil {
		h.logger.Error("Failed to encode incidents response", zap.Error(err))
	}
}

// Get handles GET /api/incidents/{incidentID}.
func (h *IncidentHandler) Get(w http.ResponseWriter, r *http.Request) {
	incidentID, err := uuid.Parse(r.PathValue("incidentID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid incident id")
		return
	}

	incident, err := h.incidents.Get(r.Context(), incidentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, incident); err != nil {
		h.logger.Error("Failed to encode incident response", zap.Error(err))
	}
}

type resolveRequest struct {
	Result        string `json:"result"`
	RecheckPassed bool   `json:"recheck_passed"`
}

// Resolve handles POST /api/incidents/{incidentID}/resolve.
func (h *IncidentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	incidentID, err := uuid.Parse(r.PathValue("incidentID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid incident id")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if err := h.incidents.Resolve(r.Context(), incidentID, req.Result, req.RecheckPassed); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type annotateRequest struct {
	Notes string `json:"notes"`
}

// Annotate handles POST /api/incidents/{incidentID}/notes.
func (h *IncidentHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	incidentID, err := uuid.Parse(r.PathValue("incidentID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid incident id")
		return
	}

	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if err := h.incidents.Annotate(r.Context(), incidentID, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
