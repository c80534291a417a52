package models

import (
	"time"

	"github.com/google/uuid"
)

// Check status values.
const (
	CheckStatusPass = "pass"
	CheckStatusFail = "fail"
)

// CCPCheckRecord is one measurement event against a CCP. It is the root of
// the audit chain: once written it is never mutated. CCP name, limit and
// corrective-action templates are denormalized so the record stays readable
// even if the definition is edited afterwards.
type CCPCheckRecord struct {
	ID              uuid.UUID `json:"id"`
	SubmissionToken uuid.UUID `json:"submission_token"` // client-generated; makes retried submissions idempotent
	CCPID           uuid.UUID `json:"ccp_id"`
	CCPName         string    `json:"ccp_name"`
	CheckDate       string    `json:"check_date"` // YYYY-MM-DD as entered on the form
	CheckTime       string    `json:"check_time"` // HH:MM as entered on the form
	RecordedValue   string    `json:"recorded_value"`
	Unit            string    `json:"unit"`
	CriticalLimit   string    `json:"critical_limit"` // limit expression at time of check
	Status          string    `json:"status"`         // 'pass', 'fail'
	StaffID         uuid.UUID `json:"staff_id"`
	StaffName       string    `json:"staff_name"`
	StaffEmail      string    `json:"staff_email"`
	Notes           string    `json:"notes"`

	// Populated only on failing checks.
	CorrectiveActionsTriggered []CorrectiveActionTemplate `json:"corrective_actions_triggered,omitempty"`
	BlockedMenuItems           []string                   `json:"blocked_menu_items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Failed returns true if the check did not meet its critical limit.
func (c *CCPCheckRecord) Failed() bool {
	return c.Status == CheckStatusFail
}
