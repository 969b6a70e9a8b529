package service

import (
	"context"
	"fmt"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/internal/domain/workflow"
)

// StatusResolver maps a semantic workflow state to the tenant's configured
// status code. Status IDs are never hardcoded; different tenants configure
// different rows in system_message_config for the same semantic state.
type StatusResolver interface {
	Resolve(ctx context.Context, companyID int64, kind entity.StatusKind) (*entity.StatusCode, error)
}

type statusResolverImpl struct {
	messageRepo port.MessageConfigRepository
	cache       port.ConfigCache
	logger      Logger
}

// NewStatusResolver creates a new StatusResolver. cache may be nil.
func NewStatusResolver(messageRepo port.MessageConfigRepository, cache port.ConfigCache, logger Logger) StatusResolver {
	return &statusResolverImpl{
		messageRepo: messageRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Resolve looks up the status code for (company, purchase-return category,
// kind's sub-category). A missing row is a configuration error: the tenant's
// status vocabulary is incomplete and the transition cannot proceed.
func (s *statusResolverImpl) Resolve(ctx context.Context, companyID int64, kind entity.StatusKind) (*entity.StatusCode, error) {
	subCategory := kind.SubCategory()

	if s.cache != nil {
		if status, ok := s.cache.GetStatus(ctx, companyID, entity.CategoryPurchaseReturn, subCategory); ok {
			return status, nil
		}
	}

	status, err := s.messageRepo.GetStatus(ctx, companyID, entity.CategoryPurchaseReturn, subCategory)
	if err != nil {
		s.logger.Error("Failed to resolve status code", "error", err, "company_id", companyID, "sub_category", subCategory)
		return nil, fmt.Errorf("resolve status code: %w", err)
	}
	if status == nil {
		return nil, fmt.Errorf("%w: no status configured for company %d sub-category %d",
			workflow.ErrConfiguration, companyID, subCategory)
	}

	if s.cache != nil {
		s.cache.SetStatus(ctx, status)
	}
	return status, nil
}
