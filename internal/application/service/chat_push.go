package service

import (
	"context"

	"github.com/garagehub/returns-workflow/internal/application/dispatcher"
	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/event"
)

// NewChatPushHandler builds a dispatcher handler that mirrors workflow
// notifications to recipients' chat accounts. Delivery is best-effort: every
// failure is logged and swallowed, nothing propagates back into the workflow.
func NewChatPushHandler(userRepo port.UserRepository, notifier port.ChatNotifier, logger Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		message := evt.GetString("message")
		if message == "" {
			return nil
		}

		recipients := make(map[string]struct{})
		if creator := evt.GetString("creator"); creator != "" && creator != evt.Actor {
			recipients[creator] = struct{}{}
		}
		if roleID := evt.GetString("notify_role_id"); roleID != "" {
			users, err := userRepo.GetByRole(ctx, evt.CompanyID, roleID)
			if err != nil {
				logger.Error("Chat push: failed to load role holders", "error", err, "role_id", roleID)
			}
			for _, u := range users {
				if u.IsActive && u.ID != evt.Actor {
					recipients[u.ID] = struct{}{}
				}
			}
		}

		for userID := range recipients {
			u, err := userRepo.GetByID(ctx, userID)
			if err != nil || u == nil || u.ChatID == "" {
				continue
			}
			if err := notifier.Push(ctx, u.ChatID, message); err != nil {
				logger.Error("Chat push failed", "error", err, "user_id", userID, "event_id", evt.ID)
			}
		}
		return nil
	}
}
