package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// AuditLogRepository implements port.AuditLogRepository
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) port.AuditLogRepository {
	return &AuditLogRepository{db: db, logger: logger}
}

// Create inserts a new audit entry
func (r *AuditLogRepository) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO system_log (id, company_id, actor, action, entity_id, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		e.ID, e.CompanyID, e.Actor, e.Action, e.EntityID, e.Detail)
	if err != nil {
		r.logger.Error("Failed to create audit entry",
			zap.String("action", e.Action),
			zap.Int64("entity_id", e.EntityID),
			zap.Error(err))
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// ListByEntity returns the audit trail of a return request, newest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, companyID, entityID int64, limit int) ([]entity.AuditEntry, error) {
	query := `
		SELECT id, company_id, actor, action, entity_id, detail, created_at
		FROM system_log
		WHERE company_id = ? AND entity_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID, entityID, limit)
	if err != nil {
		r.logger.Error("Failed to list audit entries", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.CompanyID,
			&e.Actor,
			&e.Action,
			&e.EntityID,
			&e.Detail,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Verify interface compliance
var _ port.AuditLogRepository = (*AuditLogRepository)(nil)
