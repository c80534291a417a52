package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants for staff members.
const (
	RoleStaff   = "staff"
	RoleChef    = "chef"
	RoleManager = "manager"
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleStaff, RoleChef, RoleManager, RoleOwner, RoleAdmin}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Capability is a named permission resolved from a role. Services check
// capabilities rather than string-matching role names at each call site.
type Capability string

const (
	// CanAnnotateIncident permits attaching manager notes to an incident.
	CanAnnotateIncident Capability = "annotate_incident"
	// CanRecordCorrectiveAction permits recording remediation for a failed check.
	CanRecordCorrectiveAction Capability = "record_corrective_action"
)

// roleCapabilities maps each role to the capabilities it grants.
var roleCapabilities = map[string][]Capability{
	RoleStaff:   {CanRecordCorrectiveAction},
	RoleChef:    {CanRecordCorrectiveAction},
	RoleManager: {CanAnnotateIncident, CanRecordCorrectiveAction},
	RoleOwner:   {CanAnnotateIncident, CanRecordCorrectiveAction},
	RoleAdmin:   {CanAnnotateIncident, CanRecordCorrectiveAction},
}

// RoleHasCapability reports whether the role grants the capability.
func RoleHasCapability(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// StaffUser represents a staff account known to the engine.
type StaffUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
