package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// InventoryRepository implements port.InventoryRepository
type InventoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB, logger *zap.Logger) port.InventoryRepository {
	return &InventoryRepository{db: db, logger: logger}
}

// GetLine fetches the inventory row keyed by (purchase_order_id, item_id)
func (r *InventoryRepository) GetLine(ctx context.Context, purchaseOrderID, itemID int64) (*entity.InventoryLine, error) {
	query := `
		SELECT id, company_id, purchase_order_id, item_id, store_id, item_qty, updated_at
		FROM inventory_mgmt
		WHERE purchase_order_id = ? AND item_id = ?
	`

	var line entity.InventoryLine
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, purchaseOrderID, itemID).Scan(
		&line.ID,
		&line.CompanyID,
		&line.PurchaseOrderID,
		&line.ItemID,
		&line.StoreID,
		&line.ItemQty,
		&line.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get inventory line",
			zap.Int64("purchase_order_id", purchaseOrderID),
			zap.Int64("item_id", itemID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get inventory line: %w", err)
	}
	return &line, nil
}

// AdjustQuantity adds delta to the row's item_qty
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, purchaseOrderID, itemID int64, delta float64) error {
	query := `
		UPDATE inventory_mgmt
		SET item_qty = item_qty + ?, updated_at = CURRENT_TIMESTAMP
		WHERE purchase_order_id = ? AND item_id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, delta, purchaseOrderID, itemID)
	if err != nil {
		r.logger.Error("Failed to adjust inventory",
			zap.Int64("purchase_order_id", purchaseOrderID),
			zap.Int64("item_id", itemID),
			zap.Float64("delta", delta),
			zap.Error(err))
		return fmt.Errorf("failed to adjust inventory: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inventory line po=%d item=%d: %w", purchaseOrderID, itemID, port.ErrNotFound)
	}
	return nil
}

// Verify interface compliance
var _ port.InventoryRepository = (*InventoryRepository)(nil)
