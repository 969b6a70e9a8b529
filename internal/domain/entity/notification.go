package entity

import "time"

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Notification priority constants
const (
	PriorityHigh   = "HIGH"
	PriorityNormal = "NORMAL"
)

// Alert type constants
const (
	AlertReturnCreated  = "RETURN_CREATED"
	AlertReturnApproved = "RETURN_APPROVED"
	AlertReturnRejected = "RETURN_REJECTED"
)

// Notification is a write-once, fire-and-forget message addressed to a single
// user. A failure to persist or deliver one never blocks the workflow
// transition that produced it.
type Notification struct {
	ID        string     `json:"id"`
	CompanyID int64      `json:"company_id"`
	AssignTo  string     `json:"assign_to"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	AlertType string     `json:"alert_type"`
	EntityID  int64      `json:"entity_id"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
