package entity

import "time"

// InventoryLine is a stock row keyed by (purchase_order_id, item_id). Quantity
// is decremented when a return is created and credited back exactly once if
// the return's workflow terminates via rejection.
type InventoryLine struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"company_id"`
	PurchaseOrderID int64     `json:"purchase_order_id"`
	ItemID          int64     `json:"item_id"`
	StoreID         int64     `json:"store_id"`
	ItemQty         float64   `json:"item_qty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
