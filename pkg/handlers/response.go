package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prepline/prepline-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		_ = ErrorResponse(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, apperrors.ErrInvalidMeasurementFormat):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_measurement", err.Error())
	case errors.Is(err, apperrors.ErrInvalidActionType):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_action_type", err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		_ = ErrorResponse(w, http.StatusConflict, "conflict", err.Error())
	default:
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
