package service

import (
	"context"
	"errors"
	"testing"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/internal/domain/workflow"
)

func serviceLevels() []entity.WorkflowLevel {
	return []entity.WorkflowLevel{
		{ID: 101, CompanyID: 1, ProcessName: entity.ProcessPurchaseReturn, Level: 1, RoleID: "R1", IsActive: true},
		{ID: 102, CompanyID: 1, ProcessName: entity.ProcessPurchaseReturn, Level: 2, RoleID: "R2", IsActive: true},
		{ID: 103, CompanyID: 1, ProcessName: entity.ProcessPurchaseReturn, Level: 3, RoleID: "R3", IsActive: true},
	}
}

type approvalFixture struct {
	returnRepo    *mockReturnRepo
	eventRepo     *mockEventRepo
	itemRepo      *mockItemRepo
	inventoryRepo *mockInventoryRepo
	userRepo      *mockUserRepo
	roleRepo      *mockRoleRepo
	auditRepo     *mockAuditRepo
	service       ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		returnRepo:    &mockReturnRepo{},
		eventRepo:     &mockEventRepo{},
		itemRepo:      &mockItemRepo{},
		inventoryRepo: &mockInventoryRepo{},
		userRepo:      &mockUserRepo{},
		roleRepo:      &mockRoleRepo{},
		auditRepo:     &mockAuditRepo{},
	}

	logger := &mockLogger{}
	configRepo := &mockConfigRepo{
		getLevelsFunc: func(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error) {
			return serviceLevels(), nil
		},
	}
	configService := NewWorkflowConfigService(configRepo, nil, logger)
	statusResolver := NewStatusResolver(&mockMessageConfigRepo{}, nil, logger)
	notifications := NewNotificationService(&mockNotificationRepo{}, f.userRepo, logger)
	inventory := NewInventoryService(f.inventoryRepo, f.itemRepo, logger)

	f.service = NewApprovalService(
		f.returnRepo,
		f.eventRepo,
		f.userRepo,
		f.roleRepo,
		f.auditRepo,
		configService,
		statusResolver,
		notifications,
		inventory,
		&mockTxManager{},
		nil,
		logger,
	)
	return f
}

func wfPtr(v int64) *int64 { return &v }

func pendingReturn(workflowID int64, ledgerSeq int) *entity.ReturnRequest {
	return &entity.ReturnRequest{
		ID:              7,
		CompanyID:       1,
		ReturnNumber:    "PR-001",
		PurchaseOrderID: 55,
		CreatedBy:       "creator-1",
		WorkflowID:      wfPtr(workflowID),
		LedgerSeq:       ledgerSeq,
	}
}

func TestApprovalService_Approve(t *testing.T) {
	f := newApprovalFixture()

	req := pendingReturn(101, 0)
	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return req, nil
	}

	var committed []entity.ApprovalEvent
	f.eventRepo.appendBatchFunc = func(ctx context.Context, events []entity.ApprovalEvent) error {
		committed = events
		return nil
	}

	outcome, err := f.service.Approve(context.Background(), 7, "approver-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcome.NewEvents) != 2 {
		t.Fatalf("got %d events, want 2", len(outcome.NewEvents))
	}
	if len(committed) != 2 {
		t.Fatalf("committed %d events, want 2", len(committed))
	}

	// The ledger pointer advanced to level 2 and the status stored on the
	// final event is the tenant's in-progress code
	if outcome.Request.WorkflowID == nil || *outcome.Request.WorkflowID != 102 {
		t.Errorf("WorkflowID = %v, want 102", outcome.Request.WorkflowID)
	}
	if outcome.Request.LedgerSeq != 2 {
		t.Errorf("LedgerSeq = %d, want 2", outcome.Request.LedgerSeq)
	}
	last := outcome.NewEvents[len(outcome.NewEvents)-1]
	if last.StatusID == nil || *last.StatusID != 900+entity.SubCategoryInProgress {
		t.Errorf("last event StatusID = %v, want resolved in-progress code", last.StatusID)
	}

	if len(outcome.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", outcome.Warnings)
	}

	foundAudit := false
	for _, e := range f.auditRepo.entries {
		if e.Action == entity.AuditActionLevelApproved {
			foundAudit = true
		}
	}
	if !foundAudit {
		t.Error("no LEVEL_APPROVED audit entry written")
	}
}

func TestApprovalService_Approve_StaleRequest(t *testing.T) {
	f := newApprovalFixture()

	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return pendingReturn(101, 0), nil
	}
	f.returnRepo.updateWorkflowStateFunc = func(ctx context.Context, id int64, workflowID *int64, nextRoleID *string, statusID int64, expectedSeq, newSeq int) error {
		return port.ErrStaleRequest
	}

	appended := false
	f.eventRepo.appendBatchFunc = func(ctx context.Context, events []entity.ApprovalEvent) error {
		appended = true
		return nil
	}

	_, err := f.service.Approve(context.Background(), 7, "approver-1", "")
	if !errors.Is(err, port.ErrStaleRequest) {
		t.Fatalf("expected ErrStaleRequest, got %v", err)
	}
	if appended {
		t.Error("events appended despite stale conditional update")
	}
}

func TestApprovalService_Approve_NotFound(t *testing.T) {
	f := newApprovalFixture()
	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return nil, nil
	}

	_, err := f.service.Approve(context.Background(), 99, "approver-1", "")
	if !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprovalService_Approve_WrongRole(t *testing.T) {
	f := newApprovalFixture()
	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return pendingReturn(102, 2), nil
	}
	// Actor holds R1 but level 2 requires R2
	_, err := f.service.Approve(context.Background(), 7, "approver-1", "")
	if !errors.Is(err, workflow.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
}

func TestApprovalService_Reject_LevelOneRestoresInventory(t *testing.T) {
	f := newApprovalFixture()

	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return pendingReturn(101, 0), nil
	}
	f.itemRepo.getByReturnIDFunc = func(ctx context.Context, returnID int64) ([]entity.ReturnItem, error) {
		return []entity.ReturnItem{
			{ID: 1, ReturnID: returnID, ItemID: 10, StoreID: 3, Quantity: 4},
		}, nil
	}

	var restoredDelta float64
	f.inventoryRepo.adjustQuantityFunc = func(ctx context.Context, purchaseOrderID, itemID int64, delta float64) error {
		restoredDelta = delta
		return nil
	}

	outcome, err := f.service.Reject(context.Background(), 7, "approver-1", "damaged goods")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if restoredDelta != 4 {
		t.Errorf("restore delta = %v, want +4", restoredDelta)
	}
	if outcome.Request.WorkflowID != nil {
		t.Errorf("WorkflowID = %v, want nil after level-1 rejection", outcome.Request.WorkflowID)
	}
	if len(outcome.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", outcome.Warnings)
	}

	var actions []string
	for _, e := range f.auditRepo.entries {
		actions = append(actions, e.Action)
	}
	wantActions := map[string]bool{
		entity.AuditActionInventoryRestore: false,
		entity.AuditActionLevelRejected:    false,
	}
	for _, a := range actions {
		if _, ok := wantActions[a]; ok {
			wantActions[a] = true
		}
	}
	for action, found := range wantActions {
		if !found {
			t.Errorf("missing audit action %s (got %v)", action, actions)
		}
	}
}

func TestApprovalService_Reject_MissingInventoryRowIsWarning(t *testing.T) {
	f := newApprovalFixture()

	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return pendingReturn(101, 0), nil
	}
	f.itemRepo.getByReturnIDFunc = func(ctx context.Context, returnID int64) ([]entity.ReturnItem, error) {
		return []entity.ReturnItem{
			{ID: 1, ReturnID: returnID, ItemID: 10, Quantity: 4},
		}, nil
	}
	f.inventoryRepo.getLineFunc = func(ctx context.Context, purchaseOrderID, itemID int64) (*entity.InventoryLine, error) {
		return nil, nil
	}

	outcome, err := f.service.Reject(context.Background(), 7, "approver-1", "damaged goods")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Warnings) == 0 {
		t.Error("expected warning for missing inventory row")
	}
}

func TestApprovalService_Reject_AuditFailureIsWarning(t *testing.T) {
	f := newApprovalFixture()

	f.returnRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
		return pendingReturn(102, 2), nil
	}
	f.userRepo.getByIDFunc = func(ctx context.Context, id string) (*entity.User, error) {
		return &entity.User{ID: id, CompanyID: 1, RoleID: "R2", IsActive: true}, nil
	}
	f.eventRepo.getByReturnIDFunc = func(ctx context.Context, returnID int64) ([]entity.ApprovalEvent, error) {
		return []entity.ApprovalEvent{
			{SequenceNo: 1, Level: 1, Trail: entity.TrailApproved, RoleID: "R1", ApprovedBy: "alice"},
			{SequenceNo: 2, Level: 2, Trail: entity.TrailPending, RoleID: "R2"},
		}, nil
	}
	f.auditRepo.createFunc = func(ctx context.Context, e *entity.AuditEntry) error {
		return errors.New("disk full")
	}

	outcome, err := f.service.Reject(context.Background(), 7, "approver-2", "nope")
	if err != nil {
		t.Fatalf("transition must survive audit failure, got %v", err)
	}
	if len(outcome.Warnings) == 0 {
		t.Error("expected audit failure warning")
	}
}
