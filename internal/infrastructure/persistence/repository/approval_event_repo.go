package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// ApprovalEventRepository implements port.ApprovalEventRepository
type ApprovalEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalEventRepository creates a new approval event repository
func NewApprovalEventRepository(db *sql.DB, logger *zap.Logger) port.ApprovalEventRepository {
	return &ApprovalEventRepository{db: db, logger: logger}
}

// AppendBatch inserts ledger events. The UNIQUE(return_id, sequence_no)
// constraint rejects the whole batch when a concurrent writer already claimed
// a sequence number.
func (r *ApprovalEventRepository) AppendBatch(ctx context.Context, events []entity.ApprovalEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO approval_event (
			return_id, sequence_no, level, trail, status, role_id,
			approved_by, rejected_by, rejected_to, is_finalized, superseded,
			comment, status_id, event_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	for i := range events {
		e := &events[i]
		result, err := exec.ExecContext(ctx, query,
			e.ReturnID,
			e.SequenceNo,
			e.Level,
			e.Trail.String(),
			e.Status,
			e.RoleID,
			e.ApprovedBy,
			e.RejectedBy,
			e.RejectedTo,
			e.IsFinalized,
			e.Superseded,
			e.Comment,
			e.StatusID,
			e.Date,
		)
		if err != nil {
			r.logger.Error("Failed to append approval event",
				zap.Int64("return_id", e.ReturnID),
				zap.Int("sequence_no", e.SequenceNo),
				zap.Error(err))
			return fmt.Errorf("failed to append approval event seq %d: %w", e.SequenceNo, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		e.ID = id
	}
	return nil
}

// MarkSuperseded flags the given sequence numbers as an abandoned path
func (r *ApprovalEventRepository) MarkSuperseded(ctx context.Context, returnID int64, seqs []int) error {
	if len(seqs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(seqs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`
		UPDATE approval_event
		SET superseded = 1
		WHERE return_id = ? AND sequence_no IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(seqs)+1)
	args = append(args, returnID)
	for _, seq := range seqs {
		args = append(args, seq)
	}

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to mark events superseded", zap.Int64("return_id", returnID), zap.Error(err))
		return fmt.Errorf("failed to mark events superseded: %w", err)
	}
	return nil
}

// GetByReturnID returns the full ledger ordered by sequence number
func (r *ApprovalEventRepository) GetByReturnID(ctx context.Context, returnID int64) ([]entity.ApprovalEvent, error) {
	query := `
		SELECT id, return_id, sequence_no, level, trail, status, role_id,
			approved_by, rejected_by, rejected_to, is_finalized, superseded,
			comment, status_id, event_date
		FROM approval_event
		WHERE return_id = ?
		ORDER BY sequence_no ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, returnID)
	if err != nil {
		r.logger.Error("Failed to get approval events", zap.Int64("return_id", returnID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval events: %w", err)
	}
	defer rows.Close()

	var events []entity.ApprovalEvent
	for rows.Next() {
		var e entity.ApprovalEvent
		var trail string
		var statusID sql.NullInt64
		if err := rows.Scan(
			&e.ID,
			&e.ReturnID,
			&e.SequenceNo,
			&e.Level,
			&trail,
			&e.Status,
			&e.RoleID,
			&e.ApprovedBy,
			&e.RejectedBy,
			&e.RejectedTo,
			&e.IsFinalized,
			&e.Superseded,
			&e.Comment,
			&statusID,
			&e.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval event: %w", err)
		}
		e.Trail = entity.Trail(trail)
		if statusID.Valid {
			e.StatusID = &statusID.Int64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Verify interface compliance
var _ port.ApprovalEventRepository = (*ApprovalEventRepository)(nil)
