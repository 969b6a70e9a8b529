package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// NotificationService writes system_notification rows for workflow
// participants. Rows are write-once and fire-and-forget: a failed insert is
// reported to the caller as a warning, never as a transition failure. Chat
// push delivery happens separately, off the event dispatcher.
type NotificationService interface {
	// NotifyUser writes one notification for a single user. No-op when the
	// recipient matches excludeUser.
	NotifyUser(ctx context.Context, companyID int64, userID, message, alertType string, entityID int64, excludeUser string) (*entity.Notification, error)

	// NotifyRole writes one notification per active holder of the role,
	// excluding excludeUser. Returns the recipients actually notified.
	NotifyRole(ctx context.Context, companyID int64, roleID, message, alertType string, entityID int64, excludeUser string) ([]entity.Notification, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, userRepo port.UserRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// NotifyUser writes one notification for a single user
func (s *notificationServiceImpl) NotifyUser(ctx context.Context, companyID int64, userID, message, alertType string, entityID int64, excludeUser string) (*entity.Notification, error) {
	if userID == "" || userID == excludeUser {
		return nil, nil
	}

	n := &entity.Notification{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		AssignTo:  userID,
		Message:   message,
		Status:    entity.NotificationStatusPending,
		Priority:  entity.PriorityNormal,
		AlertType: alertType,
		EntityID:  entityID,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", "error", err, "assign_to", userID, "entity_id", entityID)
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.logger.Info("Notification created", "id", n.ID, "assign_to", userID, "alert_type", alertType)
	return n, nil
}

// NotifyRole writes one notification per active holder of the role
func (s *notificationServiceImpl) NotifyRole(ctx context.Context, companyID int64, roleID, message, alertType string, entityID int64, excludeUser string) ([]entity.Notification, error) {
	users, err := s.userRepo.GetByRole(ctx, companyID, roleID)
	if err != nil {
		s.logger.Error("Failed to load role holders", "error", err, "role_id", roleID)
		return nil, fmt.Errorf("load role holders: %w", err)
	}

	var created []entity.Notification
	var firstErr error
	for _, u := range users {
		if !u.IsActive || u.ID == excludeUser {
			continue
		}
		n, err := s.NotifyUser(ctx, companyID, u.ID, message, alertType, entityID, excludeUser)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n != nil {
			created = append(created, *n)
		}
	}
	return created, firstErr
}
