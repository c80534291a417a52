package apperrors

import "errors"

var (
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("conflict")
	ErrInvalidMeasurementFormat = errors.New("value is not a valid measurement")
	ErrInvalidActionType        = errors.New("corrective action type is not in the approved set")
	ErrInvalidRole              = errors.New("invalid role")
	ErrUnauthorized             = errors.New("actor is not permitted to perform this operation")
)
