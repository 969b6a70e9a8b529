package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// WorkflowConfigRepository implements port.WorkflowConfigRepository
type WorkflowConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowConfigRepository creates a new workflow config repository
func NewWorkflowConfigRepository(db *sql.DB, logger *zap.Logger) port.WorkflowConfigRepository {
	return &WorkflowConfigRepository{db: db, logger: logger}
}

// GetLevels returns all levels for a (company, process) ordered by level
// number, insertion order preserved within a level.
func (r *WorkflowConfigRepository) GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error) {
	query := `
		SELECT id, company_id, process_name, level, role_id, is_active, override_enabled, created_at
		FROM workflow_config
		WHERE company_id = ? AND process_name = ?
		ORDER BY level ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID, processName)
	if err != nil {
		r.logger.Error("Failed to query workflow levels", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to query workflow levels: %w", err)
	}
	defer rows.Close()

	var levels []entity.WorkflowLevel
	for rows.Next() {
		var l entity.WorkflowLevel
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.ProcessName, &l.Level, &l.RoleID, &l.IsActive, &l.OverrideEnabled, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow level: %w", err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// Verify interface compliance
var _ port.WorkflowConfigRepository = (*WorkflowConfigRepository)(nil)
