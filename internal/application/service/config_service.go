package service

import (
	"context"
	"fmt"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorkflowConfigService provides the per-company approval ladder, read
// through the config cache when one is wired.
type WorkflowConfigService interface {
	Levels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error)
	Invalidate(ctx context.Context, companyID int64, processName string)
}

type workflowConfigServiceImpl struct {
	configRepo port.WorkflowConfigRepository
	cache      port.ConfigCache
	logger     Logger
}

// NewWorkflowConfigService creates a new WorkflowConfigService. cache may be
// nil; lookups then always hit the repository.
func NewWorkflowConfigService(configRepo port.WorkflowConfigRepository, cache port.ConfigCache, logger Logger) WorkflowConfigService {
	return &workflowConfigServiceImpl{
		configRepo: configRepo,
		cache:      cache,
		logger:     logger,
	}
}

// Levels returns the ordered level configuration for a (company, process).
func (s *workflowConfigServiceImpl) Levels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, error) {
	if s.cache != nil {
		if levels, ok := s.cache.GetLevels(ctx, companyID, processName); ok {
			return levels, nil
		}
	}

	levels, err := s.configRepo.GetLevels(ctx, companyID, processName)
	if err != nil {
		s.logger.Error("Failed to load workflow levels", "error", err, "company_id", companyID, "process", processName)
		return nil, fmt.Errorf("load workflow levels: %w", err)
	}

	if s.cache != nil && len(levels) > 0 {
		s.cache.SetLevels(ctx, companyID, processName, levels)
	}
	return levels, nil
}

// Invalidate drops the cached ladder for a (company, process).
func (s *workflowConfigServiceImpl) Invalidate(ctx context.Context, companyID int64, processName string) {
	if s.cache != nil {
		s.cache.InvalidateLevels(ctx, companyID, processName)
	}
}
