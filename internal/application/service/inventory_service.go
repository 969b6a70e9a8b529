package service

import (
	"context"
	"fmt"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// InventoryService applies stock movements tied to purchase returns.
type InventoryService interface {
	// DeductForReturn subtracts each line's quantity from its inventory row.
	// Called inside the creation transaction; a missing inventory row fails
	// the creation.
	DeductForReturn(ctx context.Context, purchaseOrderID int64, items []entity.ReturnItem) error

	// Restore credits each line's quantity back to inventory after a
	// terminal rejection. Best-effort compensating action: a missing
	// inventory row is reported as a warning and skipped, never an error,
	// so a data-integrity gap elsewhere cannot strand the rejection. The
	// caller guarantees at-most-once invocation per terminal rejection.
	Restore(ctx context.Context, req *entity.ReturnRequest) (restored int, warnings []string)
}

type inventoryServiceImpl struct {
	inventoryRepo port.InventoryRepository
	itemRepo      port.ReturnItemRepository
	logger        Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(inventoryRepo port.InventoryRepository, itemRepo port.ReturnItemRepository, logger Logger) InventoryService {
	return &inventoryServiceImpl{
		inventoryRepo: inventoryRepo,
		itemRepo:      itemRepo,
		logger:        logger,
	}
}

// DeductForReturn subtracts each line's quantity from its inventory row
func (s *inventoryServiceImpl) DeductForReturn(ctx context.Context, purchaseOrderID int64, items []entity.ReturnItem) error {
	for _, item := range items {
		if err := s.inventoryRepo.AdjustQuantity(ctx, purchaseOrderID, item.ItemID, -item.Quantity); err != nil {
			return fmt.Errorf("deduct inventory for item %d: %w", item.ItemID, err)
		}
	}
	return nil
}

// Restore credits each line's quantity back to inventory
func (s *inventoryServiceImpl) Restore(ctx context.Context, req *entity.ReturnRequest) (int, []string) {
	items, err := s.itemRepo.GetByReturnID(ctx, req.ID)
	if err != nil {
		s.logger.Error("Failed to load return items for restore", "error", err, "return_id", req.ID)
		return 0, []string{fmt.Sprintf("inventory restore skipped: %v", err)}
	}

	restored := 0
	var warnings []string
	for _, item := range items {
		line, err := s.inventoryRepo.GetLine(ctx, req.PurchaseOrderID, item.ItemID)
		if err != nil {
			s.logger.Error("Failed to fetch inventory line", "error", err, "item_id", item.ItemID)
			warnings = append(warnings, fmt.Sprintf("item %d: inventory lookup failed", item.ItemID))
			continue
		}
		if line == nil {
			s.logger.Error("No inventory line for return item",
				"return_id", req.ID, "purchase_order_id", req.PurchaseOrderID, "item_id", item.ItemID)
			warnings = append(warnings, fmt.Sprintf("item %d: no matching inventory row", item.ItemID))
			continue
		}

		if err := s.inventoryRepo.AdjustQuantity(ctx, req.PurchaseOrderID, item.ItemID, item.Quantity); err != nil {
			s.logger.Error("Failed to restore inventory quantity", "error", err, "item_id", item.ItemID)
			warnings = append(warnings, fmt.Sprintf("item %d: restore failed", item.ItemID))
			continue
		}
		restored++
	}

	s.logger.Info("Inventory restored", "return_id", req.ID, "restored", restored, "warnings", len(warnings))
	return restored, warnings
}
