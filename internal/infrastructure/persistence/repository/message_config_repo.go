package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// MessageConfigRepository implements port.MessageConfigRepository
type MessageConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMessageConfigRepository creates a new message config repository
func NewMessageConfigRepository(db *sql.DB, logger *zap.Logger) port.MessageConfigRepository {
	return &MessageConfigRepository{db: db, logger: logger}
}

// GetStatus resolves a tenant status code by category coordinates
func (r *MessageConfigRepository) GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, error) {
	query := `
		SELECT id, company_id, category_id, sub_category_id, message, created_at
		FROM system_message_config
		WHERE company_id = ? AND category_id = ? AND sub_category_id = ?
	`

	var sc entity.StatusCode
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, companyID, categoryID, subCategoryID).Scan(
		&sc.ID,
		&sc.CompanyID,
		&sc.CategoryID,
		&sc.SubCategoryID,
		&sc.Message,
		&sc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get status code",
			zap.Int64("company_id", companyID),
			zap.Int64("category_id", categoryID),
			zap.Int64("sub_category_id", subCategoryID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get status code: %w", err)
	}
	return &sc, nil
}

// Verify interface compliance
var _ port.MessageConfigRepository = (*MessageConfigRepository)(nil)
