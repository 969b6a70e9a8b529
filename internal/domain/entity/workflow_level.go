package entity

import "time"

// ProcessPurchaseReturn is the workflow process name for purchase returns.
const ProcessPurchaseReturn = "purchase_return"

// WorkflowLevel defines one rung of an approval ladder for a named process
// within a company. For a given (company_id, process_name) the active levels
// are contiguous integers starting at 1 and each level maps to exactly one
// role. OverrideEnabled gates whether a privileged role may collapse all
// remaining levels into a single action when acting at this level.
type WorkflowLevel struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"company_id"`
	ProcessName     string    `json:"process_name"`
	Level           int       `json:"level"`
	RoleID          string    `json:"role_id"`
	IsActive        bool      `json:"is_active"`
	OverrideEnabled bool      `json:"override_enabled"`
	CreatedAt       time.Time `json:"created_at"`
}
