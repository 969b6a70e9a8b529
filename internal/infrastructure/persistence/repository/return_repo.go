package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// ReturnRequestRepository implements port.ReturnRequestRepository
type ReturnRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReturnRequestRepository creates a new return request repository
func NewReturnRequestRepository(db *sql.DB, logger *zap.Logger) port.ReturnRequestRepository {
	return &ReturnRequestRepository{db: db, logger: logger}
}

// Create inserts a new purchase return
func (r *ReturnRequestRepository) Create(ctx context.Context, req *entity.ReturnRequest) error {
	query := `
		INSERT INTO purchase_return (
			company_id, return_number, supplier_id, supplier_name, purchase_order_id,
			total_items, value, created_by, workflow_id, next_level_role_id,
			return_status, ledger_seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		req.CompanyID,
		req.ReturnNumber,
		req.SupplierID,
		req.SupplierName,
		req.PurchaseOrderID,
		req.TotalItems,
		req.Value,
		req.CreatedBy,
		req.WorkflowID,
		req.NextLevelRoleID,
		req.ReturnStatusID,
		req.LedgerSeq,
	)
	if err != nil {
		r.logger.Error("Failed to create return", zap.String("return_number", req.ReturnNumber), zap.Error(err))
		return fmt.Errorf("failed to create return: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

// GetByID retrieves a purchase return by ID
func (r *ReturnRequestRepository) GetByID(ctx context.Context, id int64) (*entity.ReturnRequest, error) {
	query := `
		SELECT id, company_id, return_number, supplier_id, supplier_name, purchase_order_id,
			total_items, value, created_by, workflow_id, next_level_role_id,
			return_status, ledger_seq, created_at, updated_at
		FROM purchase_return
		WHERE id = ?
	`

	var req entity.ReturnRequest
	var workflowID sql.NullInt64
	var nextRoleID sql.NullString

	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.CompanyID,
		&req.ReturnNumber,
		&req.SupplierID,
		&req.SupplierName,
		&req.PurchaseOrderID,
		&req.TotalItems,
		&req.Value,
		&req.CreatedBy,
		&workflowID,
		&nextRoleID,
		&req.ReturnStatusID,
		&req.LedgerSeq,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get return", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	if workflowID.Valid {
		req.WorkflowID = &workflowID.Int64
	}
	if nextRoleID.Valid {
		req.NextLevelRoleID = &nextRoleID.String
	}
	return &req, nil
}

// UpdateWorkflowState applies a transition's outcome conditional on the
// request's ledger sequence being unchanged. Zero affected rows means a
// concurrent writer got there first.
func (r *ReturnRequestRepository) UpdateWorkflowState(ctx context.Context, id int64, workflowID *int64, nextRoleID *string, statusID int64, expectedSeq, newSeq int) error {
	query := `
		UPDATE purchase_return
		SET workflow_id = ?, next_level_role_id = ?, return_status = ?,
			ledger_seq = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND ledger_seq = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		workflowID, nextRoleID, statusID, newSeq, id, expectedSeq)
	if err != nil {
		r.logger.Error("Failed to update workflow state", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update workflow state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("return %d at seq %d: %w", id, expectedSeq, port.ErrStaleRequest)
	}
	return nil
}

// ListByStatus returns the paginated, pre-joined status listing. The total
// match count rides on every row so one round-trip serves both the page and
// the pagination header.
func (r *ReturnRequestRepository) ListByStatus(ctx context.Context, companyID, statusID int64, limit, offset int) ([]entity.ReturnSummary, error) {
	query := `
		SELECT pr.id, pr.return_number, pr.supplier_name, pr.total_items, pr.value,
			pr.created_by, COALESCE(u.name, pr.created_by) AS created_by_name,
			COALESCE(mc.message, '') AS status_text,
			pr.next_level_role_id, pr.created_at,
			COUNT(*) OVER () AS total_count
		FROM purchase_return pr
		LEFT JOIN user_mgmt u ON u.id = pr.created_by
		LEFT JOIN system_message_config mc ON mc.id = pr.return_status
		WHERE pr.company_id = ? AND pr.return_status = ?
		ORDER BY pr.created_at DESC, pr.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID, statusID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list returns", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	defer rows.Close()

	var summaries []entity.ReturnSummary
	for rows.Next() {
		var s entity.ReturnSummary
		var nextRoleID sql.NullString
		if err := rows.Scan(
			&s.ID,
			&s.ReturnNumber,
			&s.SupplierName,
			&s.TotalItems,
			&s.Value,
			&s.CreatedBy,
			&s.CreatedByName,
			&s.StatusText,
			&nextRoleID,
			&s.CreatedAt,
			&s.TotalCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan return summary: %w", err)
		}
		if nextRoleID.Valid {
			s.NextLevelRoleID = &nextRoleID.String
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// CountByStatus returns the total match count for a status, independent of
// pagination. Serves listings whose offset lies past the last page, where the
// windowed count never reaches the caller.
func (r *ReturnRequestRepository) CountByStatus(ctx context.Context, companyID, statusID int64) (int, error) {
	var total int
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM purchase_return WHERE company_id = ? AND return_status = ?",
		companyID, statusID,
	).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to count returns", zap.Int64("company_id", companyID), zap.Error(err))
		return 0, fmt.Errorf("failed to count returns: %w", err)
	}
	return total, nil
}

// Verify interface compliance
var _ port.ReturnRequestRepository = (*ReturnRequestRepository)(nil)
