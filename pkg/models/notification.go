package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification priority levels, lowest to highest.
const (
	NotificationPriorityLow    = "low"
	NotificationPriorityNormal = "normal"
	NotificationPriorityHigh   = "high"
	NotificationPriorityUrgent = "urgent"
)

// Notification type constants.
const (
	NotificationTypeCCPFailure  = "ccp_failure"
	NotificationTypeServiceStop = "service_stop"
)

// Notification is a best-effort alert to one recipient. Notifications are not
// part of the audit chain: losing one must never block or fail the check,
// incident or corrective-action writes that triggered it.
type Notification struct {
	ID             uuid.UUID `json:"id"`
	RecipientEmail string    `json:"recipient_email"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	IsRead         bool      `json:"is_read"`
	// RelatedEntity tags the record that triggered the notification,
	// e.g. "incident:<uuid>" or "corrective_action:<uuid>".
	RelatedEntity string    `json:"related_entity"`
	CreatedAt     time.Time `json:"created_at"`
}
