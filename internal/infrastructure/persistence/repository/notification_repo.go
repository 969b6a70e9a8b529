package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO system_notification (
			id, company_id, assign_to, message, status, priority, alert_type, entity_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		n.ID, n.CompanyID, n.AssignTo, n.Message, n.Status, n.Priority, n.AlertType, n.EntityID)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("id", n.ID),
			zap.String("assign_to", n.AssignTo),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// MarkSent records a successful delivery
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, entity.NotificationStatusSent, true)
}

// MarkFailed records a failed delivery
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, entity.NotificationStatusFailed, false)
}

func (r *NotificationRepository) setStatus(ctx context.Context, id, status string, stampSent bool) error {
	query := `UPDATE system_notification SET status = ? WHERE id = ?`
	if stampSent {
		query = `UPDATE system_notification SET status = ?, sent_at = CURRENT_TIMESTAMP WHERE id = ?`
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update notification status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, port.ErrNotFound)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, companyID int64, userID string, limit, offset int) ([]entity.Notification, error) {
	query := `
		SELECT id, company_id, assign_to, message, status, priority, alert_type,
			entity_id, sent_at, created_at
		FROM system_notification
		WHERE company_id = ? AND assign_to = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []entity.Notification
	for rows.Next() {
		var n entity.Notification
		var sentAt sql.NullTime
		if err := rows.Scan(
			&n.ID,
			&n.CompanyID,
			&n.AssignTo,
			&n.Message,
			&n.Status,
			&n.Priority,
			&n.AlertType,
			&n.EntityID,
			&sentAt,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
