package port

import (
	"context"

	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// ChatNotifier pushes a notification to a user's chat account. Delivery is
// best-effort; implementations log failures and never block a workflow
// transition.
type ChatNotifier interface {
	Push(ctx context.Context, chatID string, message string) error
}

// ConfigCache caches per-company workflow ladders and status vocabulary. A
// miss (ok == false) falls through to the repository; implementations may be
// backed by nothing at all.
type ConfigCache interface {
	GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, bool)
	SetLevels(ctx context.Context, companyID int64, processName string, levels []entity.WorkflowLevel)
	InvalidateLevels(ctx context.Context, companyID int64, processName string)

	GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, bool)
	SetStatus(ctx context.Context, status *entity.StatusCode)
}
