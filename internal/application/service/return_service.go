package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garagehub/returns-workflow/internal/application/dispatcher"
	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/internal/domain/event"
	"github.com/garagehub/returns-workflow/internal/domain/workflow"
)

// ReturnLineInput is one line of a new purchase return.
type ReturnLineInput struct {
	ItemID   int64   `json:"item_id"`
	StoreID  int64   `json:"store_id"`
	Quantity float64 `json:"item_qty"`
}

// CreateReturnInput carries everything needed to open a return request.
type CreateReturnInput struct {
	CompanyID       int64             `json:"company_id"`
	ReturnNumber    string            `json:"return_number"`
	SupplierID      int64             `json:"supplier_id"`
	SupplierName    string            `json:"supplier_name"`
	PurchaseOrderID int64             `json:"purchase_order_id"`
	Value           float64           `json:"value"`
	CreatedBy       string            `json:"created_by"`
	Items           []ReturnLineInput `json:"items"`
}

// ReturnService manages return request lifecycle outside of approval
// transitions: creation, reads, and the status-filtered listing.
type ReturnService interface {
	Create(ctx context.Context, in CreateReturnInput) (*entity.ReturnRequest, error)
	Get(ctx context.Context, id int64) (*entity.ReturnRequest, error)
	Events(ctx context.Context, id int64) ([]entity.ApprovalEvent, error)
	ListByStatus(ctx context.Context, companyID int64, kind entity.StatusKind, limit, offset int) ([]entity.ReturnSummary, int, error)
}

type returnServiceImpl struct {
	returnRepo     port.ReturnRequestRepository
	eventRepo      port.ApprovalEventRepository
	itemRepo       port.ReturnItemRepository
	configService  WorkflowConfigService
	statusResolver StatusResolver
	notifications  NotificationService
	inventory      InventoryService
	txManager      port.TransactionManager
	events         dispatcher.Dispatcher
	logger         Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	returnRepo port.ReturnRequestRepository,
	eventRepo port.ApprovalEventRepository,
	itemRepo port.ReturnItemRepository,
	configService WorkflowConfigService,
	statusResolver StatusResolver,
	notifications NotificationService,
	inventory InventoryService,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) ReturnService {
	return &returnServiceImpl{
		returnRepo:     returnRepo,
		eventRepo:      eventRepo,
		itemRepo:       itemRepo,
		configService:  configService,
		statusResolver: statusResolver,
		notifications:  notifications,
		inventory:      inventory,
		txManager:      txManager,
		events:         events,
		logger:         logger,
	}
}

// Create opens a return request parked at level 1 with an empty ledger, its
// line items recorded, and the returned quantities deducted from inventory.
// Request, items, and deductions commit in one transaction.
func (s *returnServiceImpl) Create(ctx context.Context, in CreateReturnInput) (*entity.ReturnRequest, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	levels, err := s.configService.Levels(ctx, in.CompanyID, entity.ProcessPurchaseReturn)
	if err != nil {
		return nil, err
	}
	entry, err := workflow.EntryLevel(levels)
	if err != nil {
		return nil, err
	}

	status, err := s.statusResolver.Resolve(ctx, in.CompanyID, entity.StatusKindCreated)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wfID, roleID := entry.ID, entry.RoleID
	req := &entity.ReturnRequest{
		CompanyID:       in.CompanyID,
		ReturnNumber:    in.ReturnNumber,
		SupplierID:      in.SupplierID,
		SupplierName:    in.SupplierName,
		PurchaseOrderID: in.PurchaseOrderID,
		TotalItems:      len(in.Items),
		Value:           in.Value,
		CreatedBy:       in.CreatedBy,
		WorkflowID:      &wfID,
		NextLevelRoleID: &roleID,
		ReturnStatusID:  status.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.returnRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create return: %w", err)
		}

		items := make([]entity.ReturnItem, 0, len(in.Items))
		for _, line := range in.Items {
			items = append(items, entity.ReturnItem{
				ReturnID:  req.ID,
				ItemID:    line.ItemID,
				StoreID:   line.StoreID,
				Quantity:  line.Quantity,
				CreatedAt: now,
			})
		}
		if err := s.itemRepo.CreateBatch(txCtx, items); err != nil {
			return fmt.Errorf("create return items: %w", err)
		}

		if err := s.inventory.DeductForReturn(txCtx, in.PurchaseOrderID, items); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create return request", "error", err, "return_number", in.ReturnNumber)
		return nil, err
	}

	s.logger.Info("Return request created",
		"id", req.ID,
		"return_number", req.ReturnNumber,
		"level_1_role", roleID,
	)

	message := fmt.Sprintf("Return %s awaits your approval at level 1", req.ReturnNumber)
	if _, err := s.notifications.NotifyRole(ctx, req.CompanyID, roleID, message, entity.AlertReturnCreated, req.ID, req.CreatedBy); err != nil {
		s.logger.Error("Level-1 notification failed", "error", err, "return_id", req.ID)
	}

	if s.events != nil {
		s.events.DispatchAsync(context.WithoutCancel(ctx), event.New(event.TypeReturnCreated, req.ID, req.CompanyID, req.CreatedBy, map[string]interface{}{
			"message":        message,
			"notify_role_id": roleID,
		}))
	}

	return req, nil
}

// Get fetches a single return request.
func (s *returnServiceImpl) Get(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
	req, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get return: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("return %d: %w", id, port.ErrNotFound)
	}
	return req, nil
}

// Events returns the full approval ledger for a request ordered by sequence
// number, superseded entries included.
func (s *returnServiceImpl) Events(ctx context.Context, id int64) ([]entity.ApprovalEvent, error) {
	ledger, err := s.eventRepo.GetByReturnID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return ledger, nil
}

// ListByStatus resolves the tenant's status code for the semantic state and
// returns the pre-joined paginated listing plus the total match count.
func (s *returnServiceImpl) ListByStatus(ctx context.Context, companyID int64, kind entity.StatusKind, limit, offset int) ([]entity.ReturnSummary, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	status, err := s.statusResolver.Resolve(ctx, companyID, kind)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.returnRepo.ListByStatus(ctx, companyID, status.ID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list returns", "error", err, "company_id", companyID, "status_id", status.ID)
		return nil, 0, fmt.Errorf("list returns: %w", err)
	}

	total := 0
	switch {
	case len(rows) > 0:
		total = rows[0].TotalCount
	case offset > 0:
		// The windowed count rides on returned rows, so an offset past the
		// last page yields no count. Fall back to counting directly.
		total, err = s.returnRepo.CountByStatus(ctx, companyID, status.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("count returns: %w", err)
		}
	}
	return rows, total, nil
}

func validateCreateInput(in CreateReturnInput) error {
	if strings.TrimSpace(in.ReturnNumber) == "" {
		return fmt.Errorf("%w: return number is required", workflow.ErrValidation)
	}
	if in.CreatedBy == "" {
		return fmt.Errorf("%w: creator is required", workflow.ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", workflow.ErrValidation)
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", workflow.ErrValidation, line.ItemID)
		}
	}
	return nil
}
