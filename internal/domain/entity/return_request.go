package entity

import "time"

// ReturnRequest represents a purchase return moving through the approval workflow.
// WorkflowID points at the workflow level configuration the request is currently
// parked at; it is nil once the request reaches a terminal state (final approval
// or a level-1 rejection). LedgerSeq mirrors the highest sequence number in the
// request's approval ledger and is the version used for optimistic concurrency
// checks on workflow mutations.
type ReturnRequest struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"company_id"`
	ReturnNumber    string    `json:"return_number"`
	SupplierID      int64     `json:"supplier_id"`
	SupplierName    string    `json:"supplier_name"`
	PurchaseOrderID int64     `json:"purchase_order_id"`
	TotalItems      int       `json:"total_items"`
	Value           float64   `json:"value"`
	CreatedBy       string    `json:"created_by"`
	WorkflowID      *int64    `json:"workflow_id,omitempty"`
	NextLevelRoleID *string   `json:"next_level_role_id,omitempty"`
	ReturnStatusID  int64     `json:"return_status"`
	LedgerSeq       int       `json:"ledger_seq"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTerminal reports whether the request has no further pending approval path.
func (r *ReturnRequest) IsTerminal() bool {
	return r.WorkflowID == nil
}

// ReturnItem represents a single line on a purchase return. Quantity is the
// amount deducted from inventory when the return was created and the amount
// credited back on a terminal rejection.
type ReturnItem struct {
	ID        int64     `json:"id"`
	ReturnID  int64     `json:"return_id"`
	ItemID    int64     `json:"item_id"`
	StoreID   int64     `json:"store_id"`
	Quantity  float64   `json:"item_qty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReturnSummary is one row of the status-filtered return listing: the return
// joined with its creator and status text plus the total result count for
// pagination.
type ReturnSummary struct {
	ID              int64     `json:"id"`
	ReturnNumber    string    `json:"return_number"`
	SupplierName    string    `json:"supplier_name"`
	TotalItems      int       `json:"total_items"`
	Value           float64   `json:"value"`
	CreatedBy       string    `json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	StatusText      string    `json:"status_text"`
	NextLevelRoleID *string   `json:"next_level_role_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	TotalCount      int       `json:"total_count"`
}
