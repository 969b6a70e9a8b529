package port

import (
	"context"
	"errors"

	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleRequest is returned when a conditional workflow update finds
	// the request's ledger sequence changed underneath it: another approver
	// committed first and this transition must be retried against fresh
	// state.
	ErrStaleRequest = errors.New("return request was modified concurrently")
)

// WorkflowConfigRepository reads the workflow_config ladder definitions.
type WorkflowConfigRepository interface {
	// GetLevels returns all levels for a (company, process) ordered by level
	// number, configuration order preserved within a level.
	GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error)
}

// ReturnRequestRepository defines persistence operations for purchase returns.
type ReturnRequestRepository interface {
	Create(ctx context.Context, req *entity.ReturnRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ReturnRequest, error)

	// UpdateWorkflowState applies a transition's pointer/status outcome to
	// the request, conditional on expectedSeq still being the request's
	// ledger sequence. Returns ErrStaleRequest when the condition fails.
	UpdateWorkflowState(ctx context.Context, id int64, workflowID *int64, nextRoleID *string, statusID int64, expectedSeq, newSeq int) error

	// ListByStatus is the paginated, pre-joined status listing. Total result
	// count rides on every row, so an empty page carries no count.
	ListByStatus(ctx context.Context, companyID, statusID int64, limit, offset int) ([]entity.ReturnSummary, error)

	// CountByStatus returns the total number of matching returns regardless
	// of pagination.
	CountByStatus(ctx context.Context, companyID, statusID int64) (int, error)
}

// ApprovalEventRepository defines persistence operations for the append-only
// approval ledger.
type ApprovalEventRepository interface {
	// AppendBatch inserts new ledger events. The (return_id, sequence_no)
	// uniqueness constraint makes concurrent stale appends fail whole.
	AppendBatch(ctx context.Context, events []entity.ApprovalEvent) error

	// MarkSuperseded flags the given sequence numbers as belonging to an
	// abandoned approval path.
	MarkSuperseded(ctx context.Context, returnID int64, seqs []int) error

	// GetByReturnID returns the full ledger ordered by sequence number,
	// superseded entries included.
	GetByReturnID(ctx context.Context, returnID int64) ([]entity.ApprovalEvent, error)
}

// ReturnItemRepository defines persistence operations for return line items.
type ReturnItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.ReturnItem) error
	GetByReturnID(ctx context.Context, returnID int64) ([]entity.ReturnItem, error)
}

// InventoryRepository defines persistence operations for inventory_mgmt rows.
type InventoryRepository interface {
	// GetLine fetches the single row keyed by (purchase_order_id, item_id),
	// or nil when no such row exists.
	GetLine(ctx context.Context, purchaseOrderID, itemID int64) (*entity.InventoryLine, error)

	// AdjustQuantity adds delta (possibly negative) to the row's item_qty.
	// Returns ErrNotFound when the row does not exist.
	AdjustQuantity(ctx context.Context, purchaseOrderID, itemID int64, delta float64) error
}

// MessageConfigRepository resolves tenant status vocabulary from
// system_message_config.
type MessageConfigRepository interface {
	GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, error)
}

// NotificationRepository defines persistence operations for
// system_notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
	ListByUser(ctx context.Context, companyID int64, userID string, limit, offset int) ([]entity.Notification, error)
}

// AuditLogRepository defines persistence operations for system_log entries.
type AuditLogRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	ListByEntity(ctx context.Context, companyID, entityID int64, limit int) ([]entity.AuditEntry, error)
}

// UserRepository reads the user_mgmt rows the fan-out needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByRole(ctx context.Context, companyID int64, roleID string) ([]entity.User, error)
}

// RoleRepository reads role_master.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Role, error)
}

// TransactionManager handles database transactions. The transaction rides in
// the context; repositories pick it up transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
