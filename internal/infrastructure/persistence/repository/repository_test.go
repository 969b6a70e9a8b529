package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/pkg/database"
)

// openTestDB creates an in-memory database with the real schema applied and
// a minimal tenant seeded (one privileged role, two users, the three status
// rows, one inventory line).
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../../../migrations"))

	seed := []string{
		`INSERT INTO role_master (id, company_id, name, is_privileged) VALUES
			('R1', 1, 'Store Manager', 0),
			('R2', 1, 'Purchase Manager', 0),
			('SA', 1, 'Super Admin', 1)`,
		`INSERT INTO user_mgmt (id, company_id, name, email, role_id, chat_id, is_active) VALUES
			('creator-1', 1, 'Casey Creator', 'casey@example.com', 'R1', 'oc_casey', 1),
			('approver-1', 1, 'Alex Approver', 'alex@example.com', 'R2', NULL, 1)`,
		`INSERT INTO system_message_config (id, company_id, category_id, sub_category_id, message) VALUES
			(901, 1, 12, 1, 'Created'),
			(902, 1, 12, 2, 'In Progress'),
			(903, 1, 12, 3, 'Completed')`,
		`INSERT INTO workflow_config (id, company_id, process_name, level, role_id, is_active) VALUES
			(101, 1, 'purchase_return', 1, 'R1', 1),
			(102, 1, 'purchase_return', 2, 'R2', 1)`,
		`INSERT INTO inventory_mgmt (company_id, purchase_order_id, item_id, store_id, item_qty) VALUES
			(1, 55, 10, 3, 20)`,
	}
	for _, stmt := range seed {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db.DB
}

func seedReturn(t *testing.T, repo port.ReturnRequestRepository) *entity.ReturnRequest {
	t.Helper()
	wfID := int64(101)
	roleID := "R1"
	req := &entity.ReturnRequest{
		CompanyID:       1,
		ReturnNumber:    "PR-001",
		SupplierID:      200,
		SupplierName:    "Acme Parts",
		PurchaseOrderID: 55,
		TotalItems:      1,
		Value:           99.5,
		CreatedBy:       "creator-1",
		WorkflowID:      &wfID,
		NextLevelRoleID: &roleID,
		ReturnStatusID:  901,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.NotZero(t, req.ID)
	return req
}

func TestReturnRequestRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewReturnRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedReturn(t, repo)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PR-001", got.ReturnNumber)
	assert.Equal(t, "creator-1", got.CreatedBy)
	require.NotNil(t, got.WorkflowID)
	assert.Equal(t, int64(101), *got.WorkflowID)
	require.NotNil(t, got.NextLevelRoleID)
	assert.Equal(t, "R1", *got.NextLevelRoleID)
	assert.Equal(t, 0, got.LedgerSeq)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReturnRequestRepository_UpdateWorkflowState(t *testing.T) {
	db := openTestDB(t)
	repo := NewReturnRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedReturn(t, repo)

	wfID := int64(102)
	roleID := "R2"
	require.NoError(t, repo.UpdateWorkflowState(ctx, req.ID, &wfID, &roleID, 902, 0, 2))

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LedgerSeq)
	assert.Equal(t, int64(902), got.ReturnStatusID)
	require.NotNil(t, got.WorkflowID)
	assert.Equal(t, int64(102), *got.WorkflowID)

	// Same expected sequence again: the row has moved on, the update loses
	err = repo.UpdateWorkflowState(ctx, req.ID, &wfID, &roleID, 902, 0, 3)
	assert.ErrorIs(t, err, port.ErrStaleRequest)

	// Terminal state clears the workflow pointer
	require.NoError(t, repo.UpdateWorkflowState(ctx, req.ID, nil, nil, 903, 2, 3))
	got, err = repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkflowID)
	assert.Nil(t, got.NextLevelRoleID)
}

func TestApprovalEventRepository_AppendAndRead(t *testing.T) {
	db := openTestDB(t)
	returnRepo := NewReturnRequestRepository(db, zap.NewNop())
	eventRepo := NewApprovalEventRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedReturn(t, returnRepo)

	statusID := int64(902)
	events := []entity.ApprovalEvent{
		{ReturnID: req.ID, SequenceNo: 1, Level: 1, Trail: entity.TrailApproved, Status: "Approved", RoleID: "R1", ApprovedBy: "creator-1", Date: time.Now()},
		{ReturnID: req.ID, SequenceNo: 2, Level: 2, Trail: entity.TrailPending, Status: "Pending", RoleID: "R2", StatusID: &statusID, Date: time.Now()},
	}
	require.NoError(t, eventRepo.AppendBatch(ctx, events))
	assert.NotZero(t, events[0].ID)

	ledger, err := eventRepo.GetByReturnID(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, 1, ledger[0].SequenceNo)
	assert.Equal(t, entity.TrailApproved, ledger[0].Trail)
	assert.Equal(t, "creator-1", ledger[0].ApprovedBy)
	require.NotNil(t, ledger[1].StatusID)
	assert.Equal(t, int64(902), *ledger[1].StatusID)

	// Sequence numbers are never reused within a return
	dup := []entity.ApprovalEvent{
		{ReturnID: req.ID, SequenceNo: 2, Level: 2, Trail: entity.TrailApproved, RoleID: "R2", Date: time.Now()},
	}
	assert.Error(t, eventRepo.AppendBatch(ctx, dup))
}

func TestApprovalEventRepository_MarkSuperseded(t *testing.T) {
	db := openTestDB(t)
	returnRepo := NewReturnRequestRepository(db, zap.NewNop())
	eventRepo := NewApprovalEventRepository(db, zap.NewNop())
	ctx := context.Background()

	req := seedReturn(t, returnRepo)

	events := []entity.ApprovalEvent{
		{ReturnID: req.ID, SequenceNo: 1, Level: 1, Trail: entity.TrailApproved, RoleID: "R1", Date: time.Now()},
		{ReturnID: req.ID, SequenceNo: 2, Level: 2, Trail: entity.TrailPending, RoleID: "R2", Date: time.Now()},
		{ReturnID: req.ID, SequenceNo: 3, Level: 2, Trail: entity.TrailRejected, RoleID: "R2", RejectedBy: "approver-1", Date: time.Now()},
	}
	require.NoError(t, eventRepo.AppendBatch(ctx, events))

	require.NoError(t, eventRepo.MarkSuperseded(ctx, req.ID, []int{2, 3}))
	require.NoError(t, eventRepo.MarkSuperseded(ctx, req.ID, nil))

	ledger, err := eventRepo.GetByReturnID(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.False(t, ledger[0].Superseded)
	assert.True(t, ledger[1].Superseded)
	assert.True(t, ledger[2].Superseded)
}

func TestInventoryRepository_AdjustQuantity(t *testing.T) {
	db := openTestDB(t)
	repo := NewInventoryRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.AdjustQuantity(ctx, 55, 10, -4))

	line, err := repo.GetLine(ctx, 55, 10)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, float64(16), line.ItemQty)

	require.NoError(t, repo.AdjustQuantity(ctx, 55, 10, 4))
	line, err = repo.GetLine(ctx, 55, 10)
	require.NoError(t, err)
	assert.Equal(t, float64(20), line.ItemQty)

	err = repo.AdjustQuantity(ctx, 55, 999, 1)
	assert.ErrorIs(t, err, port.ErrNotFound)

	missing, err := repo.GetLine(ctx, 55, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReturnRequestRepository_ListByStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewReturnRequestRepository(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		wfID := int64(101)
		roleID := "R1"
		req := &entity.ReturnRequest{
			CompanyID:       1,
			ReturnNumber:    "PR-00" + string(rune('1'+i)),
			SupplierID:      200,
			SupplierName:    "Acme Parts",
			PurchaseOrderID: 55,
			TotalItems:      1,
			CreatedBy:       "creator-1",
			WorkflowID:      &wfID,
			NextLevelRoleID: &roleID,
			ReturnStatusID:  901,
		}
		require.NoError(t, repo.Create(ctx, req))
	}

	rows, err := repo.ListByStatus(ctx, 1, 901, 2, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].TotalCount)
	assert.Equal(t, "Casey Creator", rows[0].CreatedByName)
	assert.Equal(t, "Created", rows[0].StatusText)

	rest, err := repo.ListByStatus(ctx, 1, 901, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	none, err := repo.ListByStatus(ctx, 1, 903, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	// An offset beyond the last page returns no rows, so the windowed count
	// never surfaces. CountByStatus still reports the real total.
	past, err := repo.ListByStatus(ctx, 1, 901, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, past)

	total, err := repo.CountByStatus(ctx, 1, 901)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	zero, err := repo.CountByStatus(ctx, 1, 903)
	require.NoError(t, err)
	assert.Equal(t, 0, zero)
}

func TestUserAndRoleRepositories(t *testing.T) {
	db := openTestDB(t)
	userRepo := NewUserRepository(db, zap.NewNop())
	roleRepo := NewRoleRepository(db, zap.NewNop())
	ctx := context.Background()

	u, err := userRepo.GetByID(ctx, "creator-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "R1", u.RoleID)
	assert.Equal(t, "oc_casey", u.ChatID)

	holders, err := userRepo.GetByRole(ctx, 1, "R2")
	require.NoError(t, err)
	require.Len(t, holders, 1)
	assert.Equal(t, "approver-1", holders[0].ID)
	assert.Empty(t, holders[0].ChatID)

	role, err := roleRepo.GetByID(ctx, "SA")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.True(t, role.IsPrivileged)

	missing, err := roleRepo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkflowConfigRepository_GetLevels(t *testing.T) {
	db := openTestDB(t)
	repo := NewWorkflowConfigRepository(db, zap.NewNop())

	levels, err := repo.GetLevels(context.Background(), 1, entity.ProcessPurchaseReturn)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, 1, levels[0].Level)
	assert.Equal(t, "R1", levels[0].RoleID)
	assert.Equal(t, 2, levels[1].Level)
}

func TestMessageConfigRepository_GetStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewMessageConfigRepository(db, zap.NewNop())
	ctx := context.Background()

	status, err := repo.GetStatus(ctx, 1, entity.CategoryPurchaseReturn, entity.SubCategoryInProgress)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, int64(902), status.ID)
	assert.Equal(t, "In Progress", status.Message)

	missing, err := repo.GetStatus(ctx, 2, entity.CategoryPurchaseReturn, entity.SubCategoryInProgress)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
