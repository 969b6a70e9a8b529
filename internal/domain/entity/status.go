package entity

import "time"

// Status vocabulary category for purchase return workflow states.
const CategoryPurchaseReturn int64 = 12

// Sub-categories within CategoryPurchaseReturn. The semantic states are fixed;
// the status ID and display text for each are tenant-configured rows in
// system_message_config, never hardcoded constants.
const (
	SubCategoryCreated    int64 = 1
	SubCategoryInProgress int64 = 2
	SubCategoryCompleted  int64 = 3
)

// StatusKind names a semantic workflow state prior to tenant resolution.
type StatusKind int

const (
	StatusKindCreated StatusKind = iota
	StatusKindInProgress
	StatusKindCompleted
)

// SubCategory maps the semantic state to its configured sub-category.
func (k StatusKind) SubCategory() int64 {
	switch k {
	case StatusKindInProgress:
		return SubCategoryInProgress
	case StatusKindCompleted:
		return SubCategoryCompleted
	default:
		return SubCategoryCreated
	}
}

// StatusCode is one row of system_message_config: the tenant-configured
// status ID and message text for a (category, sub_category) pair.
type StatusCode struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	CategoryID    int64     `json:"category_id"`
	SubCategoryID int64     `json:"sub_category_id"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}
