package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

const (
	levelsTTL = 10 * time.Minute
	statusTTL = 30 * time.Minute
)

func levelsKey(companyID int64, processName string) string {
	return fmt.Sprintf("wf:levels:%d:%s", companyID, processName)
}

func statusKey(companyID, categoryID, subCategoryID int64) string {
	return fmt.Sprintf("wf:status:%d:%d:%d", companyID, categoryID, subCategoryID)
}

// ConfigCache is a Redis-backed port.ConfigCache. A nil client degrades to a
// cache that always misses, so the service layer never branches on whether
// Redis is configured.
type ConfigCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewConfigCache creates a config cache over the given Redis client. The
// client may be nil.
func NewConfigCache(client *redis.Client, logger *zap.Logger) port.ConfigCache {
	return &ConfigCache{client: client, logger: logger}
}

// GetLevels fetches a cached workflow ladder
func (c *ConfigCache) GetLevels(ctx context.Context, companyID int64, processName string) ([]entity.WorkflowLevel, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, levelsKey(companyID, processName)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed", zap.String("key", levelsKey(companyID, processName)), zap.Error(err))
		return nil, false
	}

	var levels []entity.WorkflowLevel
	if err := json.Unmarshal(data, &levels); err != nil {
		c.logger.Warn("Failed to decode cached levels", zap.Error(err))
		return nil, false
	}
	return levels, true
}

// SetLevels caches a workflow ladder
func (c *ConfigCache) SetLevels(ctx context.Context, companyID int64, processName string, levels []entity.WorkflowLevel) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(levels)
	if err != nil {
		c.logger.Warn("Failed to encode levels for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, levelsKey(companyID, processName), data, levelsTTL).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", levelsKey(companyID, processName)), zap.Error(err))
	}
}

// InvalidateLevels drops a cached workflow ladder
func (c *ConfigCache) InvalidateLevels(ctx context.Context, companyID int64, processName string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, levelsKey(companyID, processName)).Err(); err != nil {
		c.logger.Warn("Redis del failed", zap.String("key", levelsKey(companyID, processName)), zap.Error(err))
	}
}

// GetStatus fetches a cached status code
func (c *ConfigCache) GetStatus(ctx context.Context, companyID, categoryID, subCategoryID int64) (*entity.StatusCode, bool) {
	if c.client == nil {
		return nil, false
	}

	key := statusKey(companyID, categoryID, subCategoryID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var status entity.StatusCode
	if err := json.Unmarshal(data, &status); err != nil {
		c.logger.Warn("Failed to decode cached status", zap.Error(err))
		return nil, false
	}
	return &status, true
}

// SetStatus caches a status code
func (c *ConfigCache) SetStatus(ctx context.Context, status *entity.StatusCode) {
	if c.client == nil || status == nil {
		return
	}

	data, err := json.Marshal(status)
	if err != nil {
		c.logger.Warn("Failed to encode status for cache", zap.Error(err))
		return
	}
	key := statusKey(status.CompanyID, status.CategoryID, status.SubCategoryID)
	if err := c.client.Set(ctx, key, data, statusTTL).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Verify interface compliance
var _ port.ConfigCache = (*ConfigCache)(nil)
