// Package models contains domain types for prepline-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// LimitOperator determines how a recorded measurement is compared against a
// CCP's critical limit. The operator is part of the CCP definition because a
// cook temperature is a minimum while a chill temperature is a maximum; a
// single hard-coded comparison cannot express both.
type LimitOperator string

const (
	// OperatorAtLeast passes when recorded >= limit (cook temperatures).
	OperatorAtLeast LimitOperator = "at_least"
	// OperatorAtMost passes when recorded <= limit (chill/freezer temperatures).
	OperatorAtMost LimitOperator = "at_most"
	// OperatorEquals passes when recorded == limit exactly.
	OperatorEquals LimitOperator = "equals"
	// OperatorWithinTolerance passes when |recorded - limit| <= ToleranceDelta.
	OperatorWithinTolerance LimitOperator = "within_tolerance"
)

// IsValid returns true if the operator is one of the supported comparisons.
func (op LimitOperator) IsValid() bool {
	switch op {
	case OperatorAtLeast, OperatorAtMost, OperatorEquals, OperatorWithinTolerance:
		return true
	default:
		return false
	}
}

// Measurement unit constants for CCP critical limits.
const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
	UnitVisual     = "visual"
	UnitOther      = "other"
)

// CorrectiveActionTemplate is one pre-approved remediation authored on the CCP
// definition. Templates are snapshotted onto the check record when a check
// fails so the audit trail shows what the staff were instructed to do at the
// time, even if the definition changes later.
type CorrectiveActionTemplate struct {
	Action            string `json:"action"`
	ResponsiblePerson string `json:"responsible_person"`
	TimeLimitMinutes  int    `json:"time_limit_minutes"`
}

// CCPDefinition identifies a monitored critical control point. Definitions are
// authored in the back office and are read-only to the compliance workflow.
type CCPDefinition struct {
	ID                  uuid.UUID                  `json:"id"`
	Name                string                     `json:"name"`
	ProcessStage        string                     `json:"process_stage"`
	CriticalLimit       string                     `json:"critical_limit"` // free text with an embedded numeric threshold, e.g. "75°C core"
	Unit                string                     `json:"unit"`
	Operator            LimitOperator              `json:"operator"`
	ToleranceDelta      float64                    `json:"tolerance_delta"` // only meaningful for within_tolerance
	MonitoringParameter string                     `json:"monitoring_parameter"`
	CheckFrequency      string                     `json:"check_frequency"`
	ResponsibleRole     string                     `json:"responsible_role"`
	CorrectiveActions   []CorrectiveActionTemplate `json:"corrective_actions"`
	BlockedMenuItems    []string                   `json:"blocked_menu_items"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}
