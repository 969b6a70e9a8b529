// Package container wires application dependencies with ordered
// initialization and reverse-order teardown.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garagehub/returns-workflow/internal/application/dispatcher"
	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/application/service"
	"github.com/garagehub/returns-workflow/internal/config"
	"github.com/garagehub/returns-workflow/internal/domain/event"
	"github.com/garagehub/returns-workflow/internal/infrastructure/cache"
	"github.com/garagehub/returns-workflow/internal/infrastructure/external/lark"
	"github.com/garagehub/returns-workflow/internal/infrastructure/persistence/repository"
	"github.com/garagehub/returns-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/garagehub/returns-workflow/pkg/database"
)

// Container manages all application dependencies and lifecycle.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	db           *database.DB
	txManager    *sqlite.DB
	redisClient  *redis.Client
	configCache  port.ConfigCache
	repositories *RepositoryBundle

	// Infrastructure - External
	larkClient   *lark.Client
	chatNotifier port.ChatNotifier

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Lifecycle
	mu     sync.Mutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	WorkflowConfig port.WorkflowConfigRepository
	Return         port.ReturnRequestRepository
	ApprovalEvent  port.ApprovalEventRepository
	ReturnItem     port.ReturnItemRepository
	Inventory      port.InventoryRepository
	MessageConfig  port.MessageConfigRepository
	Notification   port.NotificationRepository
	AuditLog       port.AuditLogRepository
	User           port.UserRepository
	Role           port.RoleRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	WorkflowConfig service.WorkflowConfigService
	StatusResolver service.StatusResolver
	Notification   service.NotificationService
	Inventory      service.InventoryService
	Return         service.ReturnService
	Approval       service.ApprovalService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations, and repositories
// 2. Redis config cache
// 3. Lark chat client
// 4. Application services
// 5. Event dispatcher and subscribers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	c.initChatClient()

	c.initServices()
	c.logger.Info("Application services initialized")

	c.initDispatcher()
	c.logger.Info("Dispatcher initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Error("Failed to close Redis client", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		} else {
			c.logger.Info("Redis client closed")
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil {
		if err := c.db.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.redisClient != nil {
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			// Cache degradation is not fatal
			status.Components["redis"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
		} else {
			status.Components["redis"] = ComponentHealth{Healthy: true}
		}
	}

	if c.dispatcher != nil {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["dispatcher"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// initDatabase opens the database, runs pending migrations, and builds all
// repositories.
func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	migrator := database.NewMigrator(db, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		db.Close()
		return err
	}

	c.txManager = sqlite.NewDB(db.DB, c.logger)

	c.repositories = &RepositoryBundle{
		WorkflowConfig: repository.NewWorkflowConfigRepository(db.DB, c.logger),
		Return:         repository.NewReturnRequestRepository(db.DB, c.logger),
		ApprovalEvent:  repository.NewApprovalEventRepository(db.DB, c.logger),
		ReturnItem:     repository.NewReturnItemRepository(db.DB, c.logger),
		Inventory:      repository.NewInventoryRepository(db.DB, c.logger),
		MessageConfig:  repository.NewMessageConfigRepository(db.DB, c.logger),
		Notification:   repository.NewNotificationRepository(db.DB, c.logger),
		AuditLog:       repository.NewAuditLogRepository(db.DB, c.logger),
		User:           repository.NewUserRepository(db.DB, c.logger),
		Role:           repository.NewRoleRepository(db.DB, c.logger),
	}
	return nil
}

// initCache connects the Redis config cache when configured. A nil client
// leaves the cache always missing, which is valid.
func (c *Container) initCache(ctx context.Context) error {
	if !c.config.RedisEnabled() {
		c.logger.Info("Redis not configured, config cache disabled")
		c.configCache = cache.NewConfigCache(nil, c.logger)
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = client
	c.configCache = cache.NewConfigCache(client, c.logger)
	c.logger.Info("Redis config cache connected", zap.String("addr", c.config.Redis.Addr))
	return nil
}

// initChatClient sets up the optional Lark chat notifier.
func (c *Container) initChatClient() {
	if !c.config.LarkEnabled() {
		c.logger.Info("Lark not configured, chat push disabled")
		return
	}

	c.larkClient = lark.NewClient(lark.Config{
		AppID:     c.config.Lark.AppID,
		AppSecret: c.config.Lark.AppSecret,
	}, c.logger)
	c.chatNotifier = lark.NewNotifier(c.larkClient, c.logger)
	c.logger.Info("Lark chat client initialized")
}

// initServices builds all application services.
func (c *Container) initServices() {
	svcLogger := &zapLoggerAdapter{logger: c.logger}
	repos := c.repositories

	configService := service.NewWorkflowConfigService(repos.WorkflowConfig, c.configCache, svcLogger)
	statusResolver := service.NewStatusResolver(repos.MessageConfig, c.configCache, svcLogger)
	notifications := service.NewNotificationService(repos.Notification, repos.User, svcLogger)
	inventory := service.NewInventoryService(repos.Inventory, repos.ReturnItem, svcLogger)

	c.services = &ServiceBundle{
		WorkflowConfig: configService,
		StatusResolver: statusResolver,
		Notification:   notifications,
		Inventory:      inventory,
	}
}

// initDispatcher builds the event dispatcher, registers subscribers, and
// finishes the services that publish through it.
func (c *Container) initDispatcher() {
	svcLogger := &zapLoggerAdapter{logger: c.logger}
	repos := c.repositories

	c.dispatcher = dispatcher.NewDispatcher(dispatcher.WithLogger(&dispatcherLoggerAdapter{logger: c.logger}))

	if c.chatNotifier != nil {
		handler := service.NewChatPushHandler(repos.User, c.chatNotifier, svcLogger)
		for _, t := range []event.Type{
			event.TypeReturnCreated,
			event.TypeReturnApproved,
			event.TypeReturnRejected,
			event.TypeReturnFinalized,
		} {
			c.dispatcher.Subscribe(t, "chat_push", handler)
		}
	}

	c.services.Return = service.NewReturnService(
		repos.Return,
		repos.ApprovalEvent,
		repos.ReturnItem,
		c.services.WorkflowConfig,
		c.services.StatusResolver,
		c.services.Notification,
		c.services.Inventory,
		c.txManager,
		c.dispatcher,
		svcLogger,
	)

	c.services.Approval = service.NewApprovalService(
		repos.Return,
		repos.ApprovalEvent,
		repos.User,
		repos.Role,
		repos.AuditLog,
		c.services.WorkflowConfig,
		c.services.StatusResolver,
		c.services.Notification,
		c.services.Inventory,
		c.txManager,
		c.dispatcher,
		svcLogger,
	)
}

// Getters for accessing container components

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the logger adapted to the service.Logger interface.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// dispatcherLoggerAdapter adapts zap.Logger to the dispatcher.Logger interface.
type dispatcherLoggerAdapter struct {
	logger *zap.Logger
}

func (a *dispatcherLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *dispatcherLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
