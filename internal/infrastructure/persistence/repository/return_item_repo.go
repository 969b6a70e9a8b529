package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// ReturnItemRepository implements port.ReturnItemRepository
type ReturnItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReturnItemRepository creates a new return item repository
func NewReturnItemRepository(db *sql.DB, logger *zap.Logger) port.ReturnItemRepository {
	return &ReturnItemRepository{db: db, logger: logger}
}

// CreateBatch inserts the line items of a return
func (r *ReturnItemRepository) CreateBatch(ctx context.Context, items []entity.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO purchase_return_items (return_id, item_id, store_id, item_qty)
		VALUES (?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	for i := range items {
		item := &items[i]
		result, err := exec.ExecContext(ctx, query,
			item.ReturnID, item.ItemID, item.StoreID, item.Quantity)
		if err != nil {
			r.logger.Error("Failed to create return item",
				zap.Int64("return_id", item.ReturnID),
				zap.Int64("item_id", item.ItemID),
				zap.Error(err))
			return fmt.Errorf("failed to create return item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.ID = id
	}
	return nil
}

// GetByReturnID returns the line items of a return
func (r *ReturnItemRepository) GetByReturnID(ctx context.Context, returnID int64) ([]entity.ReturnItem, error) {
	query := `
		SELECT id, return_id, item_id, store_id, item_qty, created_at
		FROM purchase_return_items
		WHERE return_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, returnID)
	if err != nil {
		r.logger.Error("Failed to get return items", zap.Int64("return_id", returnID), zap.Error(err))
		return nil, fmt.Errorf("failed to get return items: %w", err)
	}
	defer rows.Close()

	var items []entity.ReturnItem
	for rows.Next() {
		var item entity.ReturnItem
		if err := rows.Scan(
			&item.ID,
			&item.ReturnID,
			&item.ItemID,
			&item.StoreID,
			&item.Quantity,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan return item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Verify interface compliance
var _ port.ReturnItemRepository = (*ReturnItemRepository)(nil)
