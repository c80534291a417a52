package models

import (
	"time"

	"github.com/google/uuid"
)

// Approved corrective action types. No free-form action is permitted; a
// failed check can only be remediated by one of these.
const (
	ActionReCookRecheck = "re_cook_recheck"
	ActionDiscardBatch  = "discard_batch"
	ActionStopService   = "stop_service"
)

// ValidActionTypes contains the approved corrective action set.
var ValidActionTypes = []string{ActionReCookRecheck, ActionDiscardBatch, ActionStopService}

// IsValidActionType checks whether the action type is in the approved set.
func IsValidActionType(actionType string) bool {
	for _, t := range ValidActionTypes {
		if t == actionType {
			return true
		}
	}
	return false
}

// Corrective action status values.
const (
	ActionStatusPending   = "pending"
	ActionStatusCompleted = "completed"
)

// CorrectiveAction records the remediation chosen for a failed check. It is
// never deleted. RequiresRecheck is always true on creation: every corrective
// action in this model must be confirmed by a subsequent passing check.
type CorrectiveAction struct {
	ID              uuid.UUID `json:"id"`
	CCPCheckID      uuid.UUID `json:"ccp_check_id"`
	CCPID           uuid.UUID `json:"ccp_id"`
	CCPName         string    `json:"ccp_name"`
	ActionType      string    `json:"action_type"`
	Description     string    `json:"action_description"`
	InitiatedByID   uuid.UUID `json:"initiated_by_id"`
	InitiatedBy     string    `json:"initiated_by_name"`
	InitiatedAt     time.Time `json:"initiated_at"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"` // 'pending', 'completed'
	RequiresRecheck bool      `json:"requires_recheck"`
}
