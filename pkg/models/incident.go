package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies how far a failing measurement deviated from its limit.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Pending marks an incident field whose value has not been determined yet.
const ResolutionPending = "pending"

// IncidentRecord is created if and only if a CCP check fails. It is a
// legal-hold record: never deleted, mutated only by the resolution update and
// by manager annotation. Exactly one incident exists per failing check.
type IncidentRecord struct {
	ID            uuid.UUID `json:"id"`
	CCPCheckID    uuid.UUID `json:"ccp_check_id"`
	CCPID         uuid.UUID `json:"ccp_id"`
	CCPName       string    `json:"ccp_name"`
	FailureValue  string    `json:"failure_value"`
	CriticalLimit string    `json:"critical_limit"`
	Unit          string    `json:"unit"`
	IncidentTime  time.Time `json:"incident_time"`
	DetectedByID  uuid.UUID `json:"detected_by_id"`
	DetectedBy    string    `json:"detected_by_name"`

	// Remediation state. Both start as 'pending'.
	CorrectiveActionType        string `json:"corrective_action_type"`
	CorrectiveActionDescription string `json:"corrective_action_description"`
	ResolutionResult            string `json:"resolution_result"`

	BlockedMenuItems []string `json:"blocked_menu_items"`
	Severity         Severity `json:"incident_severity"`
	// NeedsManualReview is set when severity could not be derived (zero limit).
	NeedsManualReview bool `json:"needs_manual_review"`
	// IsLegalHold is true for every incident; the record class is permanent.
	IsLegalHold bool `json:"is_legal_hold"`

	RecheckPassed *bool      `json:"recheck_passed,omitempty"`
	ResolvedByID  *uuid.UUID `json:"resolved_by_id,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ManagerNotes  string     `json:"manager_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open returns true while the incident has not received a resolution outcome.
func (i *IncidentRecord) Open() bool {
	return i.ResolutionResult == ResolutionPending
}
