package service

import (
	"context"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// Mock repositories and collaborators shared by the service tests.

type mockReturnRepo struct {
	createFunc              func(ctx context.Context, req *entity.ReturnRequest) error
	getByIDFunc             func(ctx context.Context, id int64) (*entity.ReturnRequest, error)
	updateWorkflowStateFunc func(ctx context.Context, id int64, workflowID *int64, nextRoleID *string, statusID int64, expectedSeq, newSeq int) error
	listByStatusFunc        func(ctx context.Context, companyID, statusID int64, limit, offset int) ([]entity.ReturnSummary, error)
	countByStatusFunc       func(ctx context.Context, companyID, statusID int64) (int, error)
}

func (m *mockReturnRepo) Create(ctx context.Context, req *entity.ReturnRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	req.ID = 1
	return nil
}

func (m *mockReturnRepo) GetByID(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.ReturnRequest{ID: id, CompanyID: 1}, nil
}

func (m *mockReturnRepo) UpdateWorkflowState(ctx context.Context, id int64, workflowID *int64, nextRoleID *string, statusID int64, expectedSeq, newSeq int) error {
	if m.updateWorkflowStateFunc != nil {
		return m.updateWorkflowStateFunc(ctx, id, workflowID, nextRoleID, statusID, expectedSeq, newSeq)
	}
	return nil
}

func (m *mockReturnRepo) ListByStatus(ctx context.Context, companyID, statusID int64, limit, offset int) ([]entity.ReturnSummary, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, companyID, statusID, limit, offset)
	}
	return nil, nil
}

func (m *mockReturnRepo) CountByStatus(ctx context.Context, companyID, statusID int64) (int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, companyID, statusID)
	}
	return 0, nil
}

type mockEventRepo struct {
	appendBatchFunc    func(ctx context.Context, events []entity.ApprovalEvent) error
	markSupersededFunc func(ctx context.Context, returnID int64, seqs []int) error
	getByReturnIDFunc  func(ctx context.Context, returnID int64) ([]entity.ApprovalEvent, error)
}

func (m *mockEventRepo) AppendBatch(ctx context.Context, events []entity.ApprovalEvent) error {
	if m.appendBatchFunc != nil {
		return m.appendBatchFunc(ctx, events)
	}
	return nil
}

func (m *mockEventRepo) MarkSuperseded(ctx context.Context, returnID int64, seqs []int) error {
	if m.markSupersededFunc != nil {
		return m.markSupersededFunc(ctx, returnID, seqs)
	}
	return nil
}

func (m *mockEventRepo) GetByReturnID(ctx context.Context, returnID int64) ([]entity.ApprovalEvent, error) {
	if m.getByReturnIDFunc != nil {
		return m.getByReturnIDFunc(ctx, returnID)
	}
	return nil, nil
}

type mockItemRepo struct {
	createBatchFunc   func(ctx context.Context, items []entity.ReturnItem) error
	getByReturnIDFunc func(ctx context.Context, returnID int64) ([]entity.ReturnItem, error)
}

func (m *mockItemRepo) CreateBatch(ctx context.Context, items []entity.ReturnItem) error {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, items)
	}
	return nil
}

func (m *mockItemRepo) GetByReturnID(ctx context.Context, returnID int64) ([]entity.ReturnItem, error) {
	if m.getByReturnIDFunc != nil {
		return m.getByReturnIDFunc(ctx, returnID)
	}
	return nil, nil
}

type mockInventoryRepo struct {
	getLineFunc        func(ctx context.Context, purchaseOrderID, itemID int64) (*entity.InventoryLine, error)
	adjustQuantityFunc func(ctx context.Context, purchaseOrderID, itemID int64, delta float64) error
}

func (m *mockInventoryRepo) GetLine(ctx context.Context, purchaseOrderID, itemID int64) (*entity.InventoryLine, error) {
	if m.getLineFunc != nil {
		return m.getLineFunc(ctx, purchaseOrderID, itemID)
	}
	return &entity.InventoryLine{PurchaseOrderID: purchaseOrderID, ItemID: itemID}, nil
}

func (m *mockInventoryRepo) AdjustQuantity(ctx context.Context, purchaseOrderID, itemID int64, delta float64) error {
	if m.adjustQuantityFunc != nil {
		return m.adjustQuantityFunc(ctx, purchaseOrderID, itemID, delta)
	}
	return nil
}

type mockConfigRepo struct {
	getLevelsFunc func(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error)
}

func (m *mockConfigRepo) GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error) {
	if m.getLevelsFunc != nil {
		return m.getLevelsFunc(ctx, companyID, processName)
	}
	return nil, nil
}

type mockMessageConfigRepo struct {
	getStatusFunc func(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, error)
}

func (m *mockMessageConfigRepo) GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, error) {
	if m.getStatusFunc != nil {
		return m.getStatusFunc(ctx, companyID, categoryID, subCategoryID)
	}
	return &entity.StatusCode{ID: 900 + subCategoryID, CompanyID: companyID, CategoryID: categoryID, SubCategoryID: subCategoryID, Message: "status"}, nil
}

type mockNotificationRepo struct {
	createFunc func(ctx context.Context, n *entity.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string) error   { return nil }
func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id string) error { return nil }

func (m *mockNotificationRepo) ListByUser(ctx context.Context, companyID int64, userID string, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

type mockAuditRepo struct {
	createFunc func(ctx context.Context, e *entity.AuditEntry) error
	entries    []entity.AuditEntry
}

func (m *mockAuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, companyID, entityID int64, limit int) ([]entity.AuditEntry, error) {
	return m.entries, nil
}

type mockUserRepo struct {
	getByIDFunc   func(ctx context.Context, id string) (*entity.User, error)
	getByRoleFunc func(ctx context.Context, companyID int64, roleID string) ([]entity.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, CompanyID: 1, RoleID: "R1", IsActive: true}, nil
}

func (m *mockUserRepo) GetByRole(ctx context.Context, companyID int64, roleID string) ([]entity.User, error) {
	if m.getByRoleFunc != nil {
		return m.getByRoleFunc(ctx, companyID, roleID)
	}
	return nil, nil
}

type mockRoleRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Role, error)
}

func (m *mockRoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Role{ID: id, CompanyID: 1}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockCache struct {
	levels   map[string][]entity.WorkflowLevel
	statuses map[string]*entity.StatusCode
}

func newMockCache() *mockCache {
	return &mockCache{
		levels:   make(map[string][]entity.WorkflowLevel),
		statuses: make(map[string]*entity.StatusCode),
	}
}

func (m *mockCache) GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, bool) {
	levels, ok := m.levels[processName]
	return levels, ok
}

func (m *mockCache) SetLevels(ctx context.Context, companyID int64, processName string, levels []entity.WorkflowLevel) {
	m.levels[processName] = levels
}

func (m *mockCache) InvalidateLevels(ctx context.Context, companyID int64, processName string) {
	delete(m.levels, processName)
}

func (m *mockCache) GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, bool) {
	status, ok := m.statuses[statusCacheKey(subCategoryID)]
	return status, ok
}

func (m *mockCache) SetStatus(ctx context.Context, status *entity.StatusCode) {
	m.statuses[statusCacheKey(status.SubCategoryID)] = status
}

func statusCacheKey(subCategoryID int64) string {
	return string(rune('a' + subCategoryID))
}

type mockChatNotifier struct {
	pushFunc func(ctx context.Context, chatID, message string) error
	pushed   []string
}

func (m *mockChatNotifier) Push(ctx context.Context, chatID, message string) error {
	if m.pushFunc != nil {
		return m.pushFunc(ctx, chatID, message)
	}
	m.pushed = append(m.pushed, chatID)
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// Interface compliance for the mocks
var (
	_ port.ReturnRequestRepository  = (*mockReturnRepo)(nil)
	_ port.ApprovalEventRepository  = (*mockEventRepo)(nil)
	_ port.ReturnItemRepository     = (*mockItemRepo)(nil)
	_ port.InventoryRepository      = (*mockInventoryRepo)(nil)
	_ port.WorkflowConfigRepository = (*mockConfigRepo)(nil)
	_ port.MessageConfigRepository  = (*mockMessageConfigRepo)(nil)
	_ port.NotificationRepository   = (*mockNotificationRepo)(nil)
	_ port.AuditLogRepository       = (*mockAuditRepo)(nil)
	_ port.UserRepository           = (*mockUserRepo)(nil)
	_ port.RoleRepository           = (*mockRoleRepo)(nil)
	_ port.TransactionManager       = (*mockTxManager)(nil)
	_ port.ConfigCache              = (*mockCache)(nil)
	_ port.ChatNotifier             = (*mockChatNotifier)(nil)
)
