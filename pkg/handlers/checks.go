package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/models"
	"github.com/prepline/prepline-engine/pkg/services"
)

// CheckHandler serves CCP check submission and listing.
type CheckHandler struct {
	checks services.CheckService
	logger *zap.Logger
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(checks services.CheckService, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{checks: checks, logger: logger}
}

// RegisterRoutes registers check routes on the given mux.
func (h *CheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ccps/{ccpID}/checks", h.SubmitCheck)
	mux.HandleFunc("GET /api/ccps/{ccpID}/checks", h.ListChecks)
	mux.HandleFunc("GET /api/checks/unreconciled", h.ListUnreconciled)
	mux.HandleFunc("GET /api/checks/{checkID}", h.GetCheck)
}

type submitCheckRequest struct {
	SubmissionToken string `json:"submission_token"`
	CheckDate       string `json:"check_date"`
	CheckTime       string `json:"check_time"`
	RecordedValue   string `json:"recorded_value"`
	Notes           string `json:"notes"`
}

type submitCheckResponse struct {
	Check            *models.CCPCheckRecord    `json:"check"`
	Incident         *models.IncidentRecord    `json:"incident,omitempty"`
	ResolvedIncident *models.IncidentRecord    `json:"resolved_incident,omitempty"`
	State            models.CheckWorkflowState `json:"state"`
	Warnings         []string                  `json:"warnings,omitempty"`
}

// SubmitCheck handles POST /api/ccps/{ccpID}/checks.
// Degraded-success conditions (incident logging or resolution linking
// failures) come back as warnings on a 200: the check record is durable.
func (h *CheckHandler) SubmitCheck(w http.ResponseWriter, r *http.Request) {
	ccpID, err := uuid.Parse(r.PathValue("ccpID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid CCP id")
		return
	}

	var req submitCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.RecordedValue == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_value", "recorded_value is required")
		return
	}

	input := services.SubmitCheckInput{
		CCPID:         ccpID,
		CheckDate:     req.CheckDate,
		CheckTime:     req.CheckTime,
		RecordedValue: req.RecordedValue,
		Notes:         req.Notes,
	}
	if req.SubmissionToken != "" {
		token, err := uuid.Parse(req.SubmissionToken)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_token", "submission_token must be a UUID")
			return
		}
		input.SubmissionToken = token
	}

	result, err := h.checks.SubmitCheck(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := submitCheckResponse{
		Check:            result.Check,
		Incident:         result.Incident,
		ResolvedIncident: result.ResolvedIncident,
		State:            result.State,
	}
	if result.IncidentErr != nil {
		resp.Warnings = append(resp.Warnings, "check recorded, incident logging failed")
	}
	if result.ResolutionErr != nil {
		resp.Warnings = append(resp.Warnings, "re-check passed, incident could not be closed")
	}

	status := http.StatusCreated
	if len(resp.Warnings) > 0 {
		status = http.StatusOK
	}
	if err := WriteJSON(w, status, resp); err != nil {
		h.logger.Error("Failed to encode check response", zap.Error(err))
	}
}

// ListChecks handles GET /api/ccps/{ccpID}/checks.
func (h *CheckHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	ccpID, err := uuid.Parse(r.PathValue("ccpID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid CCP id")
		return
	}

	checks, err := h.checks.ListChecks(r.Context(), ccpID, 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"checks": checks}); err != nil {
		h.logger.Error("Failed to encode checks response", zap.Error(err))
	}
}

// ListUnreconciled handles GET /api/checks/unreconciled: failed checks whose
// incident write degraded and needs backfilling.
func (h *CheckHandler) ListUnreconciled(w http.ResponseWriter, r *http.Request) {
	checks, err := h.checks.ListUnreconciledFailures(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"checks": checks}); err != nil {
		h.logger.Error("Failed to encode unreconciled checks response", zap.Error(err))
	}
}

// GetCheck handles GET /api/checks/{checkID}.
func (h *CheckHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	checkID, err := uuid.Parse(r.PathValue("checkID"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid check id")
		return
	}

	check, err := h.checks.GetCheck(r.Context(), checkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, check); err != nil {
		h.logger.Error("Failed to encode check response", zap.Error(err))
	}
}
