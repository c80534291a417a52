package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/repositories"
)

// CCPHandler serves read access to critical control point definitions.
// Definitions are authored by the back-office CRUD layer elsewhere; the
// engine only needs to list them for the monitoring forms.
type CCPHandler struct {
	ccpRepo repositories.CCPRepository
	logger  *zap.Logger
}

// NewCCPHandler creates a new CCPHandler.
func NewCCPHandler(ccpRepo repositories.CCPRepository, logger *zap.Logger) *CCPHandler {
	return &CCPHandler{ccpRepo: ccpRepo, logger: logger}
}

// RegisterRoutes registers CCP routes on the given mux.
func (h *CCPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ccps", h.List)
	mux.HandleFunc("GET /api/ccps/{ccpID}", h.Get)
}

// List handles GET /api/ccps.
func (h *CCPHandler) List(w http.ResponseWriter, r *http.Request) {
	ccps, err := h.ccpRepo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"ccps": ccps}); err != nil {
		h.logger.Error("Failed to encode CCPs response", zap.Error(err))
	}
}

// Get handles GET /api/ccps/{ccpID}.
func (h *CCPHandler) Get(w http.ResponseWriter, r *http.Request) {
	ccpID, err := uuid.Parse(r.PathValue("ccpID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid CCP id")
		return
	}

	ccp, err := h.ccpRepo.GetByID(r.Context(), ccpID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ccp); err != nil {
		h.logger.Error("Failed to encode CCP response", zap.Error(err))
	}
}
