package container

import (
	"sync"

	"gorm.io/gorm"

	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/infrastructure/config"
	"immofox-http-service/internal/infrastructure/mqtt"
	Logger "immofox-http-service/pkg/logger"
)

// ServiceContainer wires all services and hands them to the controllers by name
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// infrastructure
	store     services.InterfaceRedisService
	publisher *services.FanoutPublisher
	mqtt      *mqtt.Publisher
	gateway   services.InterfacePaymentGateway

	// domain
	jwtService          services.InterfaceJWTService
	userService         services.InterfaceUserService
	propertyService     services.InterfacePropertyService
	unitService         services.InterfaceUnitService
	tenantService       services.InterfaceTenantService
	meldungService      services.InterfaceMeldungService
	messageService      services.InterfaceMessageService
	notificationService services.InterfaceNotificationService
	dashboardService    services.InterfaceDashboardService
	subscriptionService services.InterfaceSubscriptionService

	mu sync.RWMutex
}

// Option customises the container before the services are built
type Option func(*ServiceContainer)

// WithStore replaces the key value store (Redis or in-memory)
func WithStore(store services.InterfaceRedisService) Option {
	return func(c *ServiceContainer) { c.store = store }
}

// WithPaymentGateway replaces the PayPal gateway
func WithPaymentGateway(g services.InterfacePaymentGateway) Option {
	return func(c *ServiceContainer) { c.gateway = g }
}

// WithMQTT adds a connected MQTT publisher to the event fanout
func WithMQTT(p *mqtt.Publisher) Option {
	return func(c *ServiceContainer) { c.mqtt = p }
}

// NewServiceContainer creates all services. Without a store option Redis is
// used when enabled and reachable, the in-memory store otherwise.
func NewServiceContainer(db *gorm.DB, cfg *config.Config, opts ...Option) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	c := &ServiceContainer{
		db:        db,
		config:    cfg,
		publisher: services.NewFanoutPublisher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = defaultStore(cfg)
	}
	if c.gateway == nil {
		c.gateway = services.NewPayPalGateway(cfg)
	}
	if c.mqtt != nil {
		c.publisher.Add(c.mqtt)
	}

	c.initializeServices()
	return c
}

func defaultStore(cfg *config.Config) services.InterfaceRedisService {
	if !cfg.RedisEnabled {
		return services.NewMemoryStore()
	}
	redisService := services.NewRedisService(cfg)
	if err := redisService.Ping(); err != nil {
		Logger.Warning("Redis %s not reachable: %v, using in-memory store", cfg.GetRedisAddr(), err)
		return services.NewMemoryStore()
	}
	Logger.Info("Redis connected at %s", cfg.GetRedisAddr())
	return redisService
}

// initializeServices builds the services in dependency order
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config, c.db, c.store)
	c.userService = services.NewUserService(c.db)
	c.notificationService = services.NewNotificationService(c.db, c.store, c.publisher)
	c.subscriptionService = services.NewSubscriptionService(c.db, c.gateway, c.config.FreePlanUnitLimit)
	c.propertyService = services.NewPropertyService(c.db, c.store)
	c.unitService = services.NewUnitService(c.db, c.store, c.subscriptionService, c.notificationService)
	c.tenantService = services.NewTenantService(c.db, c.store, c.notificationService)
	c.meldungService = services.NewMeldungService(c.db, c.store, c.notificationService)
	c.messageService = services.NewMessageService(c.db, c.store, c.notificationService, c.publisher)
	c.dashboardService = services.NewDashboardService(c.db, c.store)
}

// GetService returns the service registered under name, nil if unknown
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "redis":
		return c.store
	case "jwt":
		return c.jwtService
	case "user":
		return c.userService
	case "property":
		return c.propertyService
	case "unit":
		return c.unitService
	case "tenant":
		return c.tenantService
	case "meldung":
		return c.meldungService
	case "message":
		return c.messageService
	case "notification":
		return c.notificationService
	case "dashboard":
		return c.dashboardService
	case "subscription":
		return c.subscriptionService
	default:
		return nil
	}
}

// Publisher returns the event fanout so that transports (websocket hub) can register
func (c *ServiceContainer) Publisher() *services.FanoutPublisher {
	return c.publisher
}

// GetDB returns the database connection
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Close disconnects the MQTT publisher
func (c *ServiceContainer) Close() {
	if c.mqtt != nil {
		c.mqtt.Disconnect()
	}
}
