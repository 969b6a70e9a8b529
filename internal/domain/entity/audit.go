package entity

import "time"

// Audit action constants for system_log entries.
const (
	AuditActionReturnCreated    = "RETURN_CREATED"
	AuditActionLevelApproved    = "LEVEL_APPROVED"
	AuditActionOverrideApproved = "OVERRIDE_APPROVED"
	AuditActionLevelRejected    = "LEVEL_REJECTED"
	AuditActionInventoryRestore = "INVENTORY_RESTORED"
)

// AuditEntry is one row of system_log describing who did what to which
// return request.
type AuditEntry struct {
	ID        string    `json:"id"`
	CompanyID int64     `json:"company_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	EntityID  int64     `json:"entity_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
