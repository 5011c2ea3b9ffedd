package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "immofox-http-service/docs"
	"immofox-http-service/internal/app/controllers"
	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/app/ws"
	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/infrastructure/config"
)

// SetupRouter initialises the gin engine with all routes
func SetupRouter(container *container.ServiceContainer, hub *ws.Hub, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, container, hub)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(r *gin.Engine, container *container.ServiceContainer, hub *ws.Hub) {
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container, hub)
}

// registerPublicRoutes registers routes without authentication
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	public := api.Group("")
	// 10 requests per second, bursts up to 20
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "health"))
	public.GET("/health/cache-stats", controllers.HandleHealthFunc(container, "cacheStats"))

	authGroup := public.Group("/auth")
	// login and registration are brute force targets
	authGroup.Use(middleware.RateLimiter(middleware.RateLimiterConfig{Rate: 2, Burst: 5, LimitType: "combined"}))
	authGroup.POST("/register", controllers.HandleAuthFunc(container, "register"))
	authGroup.POST("/login", controllers.HandleAuthFunc(container, "login"))
}

// registerAuthenticatedRoutes registers routes that need a valid token
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer, hub *ws.Hub) {
	jwtService := container.GetService("jwt").(services.InterfaceJWTService)

	auth := api.Group("")
	auth.Use(middleware.Authenticate(jwtService))
	// 30 requests per second per user, bursts up to 50; covers the 5s polling of all tabs
	auth.Use(middleware.UserRateLimiter(30, 50))

	auth.POST("/auth/logout", controllers.HandleAuthFunc(container, "logout"))
	auth.GET("/auth/me", controllers.HandleAuthFunc(container, "me"))

	// users
	users := auth.Group("/users")
	{
		users.GET("/me", controllers.HandleUserFunc(container, "getMe"))
		users.PUT("/me", controllers.HandleUserFunc(container, "updateMe"))
		users.PUT("/me/password", controllers.HandleUserFunc(container, "changePassword"))
		users.GET("/handwerker",
			middleware.RequireRole(models.RoleVermieter),
			middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}),
			controllers.HandleUserFunc(container, "listHandwerker"))
	}

	registerVermieterRoutes(auth, container)
	registerMieterRoutes(auth, container)
	registerHandwerkerRoutes(auth, container)

	// notifications
	notifications := auth.Group("/notifications")
	{
		notifications.GET("", controllers.HandleNotificationFunc(container, "getNotifications"))
		notifications.GET("/unread-count", controllers.HandleNotificationFunc(container, "unreadCount"))
		notifications.PUT("/read-all", controllers.HandleNotificationFunc(container, "markAllRead"))
		notifications.PUT("/:id/read", controllers.HandleNotificationFunc(container, "markRead"))
		notifications.DELETE("/:id", controllers.HandleNotificationFunc(container, "deleteNotification"))
	}

	// chat
	messages := auth.Group("/messages")
	{
		messages.GET("", controllers.HandleMessageFunc(container, "getMessages"))
		messages.POST("", controllers.HandleMessageFunc(container, "sendMessage"))
		messages.GET("/contacts", controllers.HandleMessageFunc(container, "getContacts"))
		messages.GET("/conversation/:userId", controllers.HandleMessageFunc(container, "getConversation"))
		messages.GET("/unread-count", controllers.HandleMessageFunc(container, "unreadCount"))
		messages.GET("/ws", controllers.HandleWebsocketFunc(hub))
	}

	// subscription
	subscription := auth.Group("/subscription")
	subscription.Use(middleware.RequireRole(models.RoleVermieter))
	{
		subscription.GET("", controllers.HandleSubscriptionFunc(container, "getSubscription"))
		subscription.GET("/plans",
			middleware.Cache(middleware.CacheConfig{Expiration: 10 * time.Minute}),
			controllers.HandleSubscriptionFunc(container, "getPlans"))
		// one bucket for all landlords, bounds calls to the payment provider
		subscription.POST("/checkout", middleware.PathRateLimiter(1, 10), controllers.HandleSubscriptionFunc(container, "checkout"))
		subscription.POST("/cancel", controllers.HandleSubscriptionFunc(container, "cancel"))
	}
}

// registerVermieterRoutes registers the landlord area
func registerVermieterRoutes(auth *gin.RouterGroup, container *container.ServiceContainer) {
	vermieter := auth.Group("/vermieter")
	vermieter.Use(middleware.RequireRole(models.RoleVermieter))

	vermieter.GET("/dashboard", controllers.GetDashboard(container))

	properties := vermieter.Group("/properties")
	{
		properties.GET("", controllers.HandlePropertyFunc(container, "getProperties"))
		properties.POST("", controllers.HandlePropertyFunc(container, "createProperty"))
		properties.GET("/:id", controllers.HandlePropertyFunc(container, "getProperty"))
		properties.PUT("/:id", controllers.HandlePropertyFunc(container, "updateProperty"))
		properties.DELETE("/:id", controllers.HandlePropertyFunc(container, "deleteProperty"))
		properties.GET("/:id/units", controllers.HandleUnitFunc(container, "getUnits"))
		properties.POST("/:id/units", controllers.HandleUnitFunc(container, "createUnit"))
	}

	units := vermieter.Group("/units")
	{
		units.GET("/:id", controllers.HandleUnitFunc(container, "getUnit"))
		units.PUT("/:id", controllers.HandleUnitFunc(container, "updateUnit"))
		units.DELETE("/:id", controllers.HandleUnitFunc(container, "deleteUnit"))
		units.POST("/:id/tenant", controllers.HandleUnitFunc(container, "assignTenant"))
		units.DELETE("/:id/tenant", controllers.HandleUnitFunc(container, "removeTenant"))
	}

	tenants := vermieter.Group("/tenants")
	{
		tenants.GET("", controllers.HandleTenantFunc(container, "getTenants"))
		tenants.POST("", controllers.HandleTenantFunc(container, "createTenant"))
		tenants.GET("/:id", controllers.HandleTenantFunc(container, "getTenant"))
		tenants.PUT("/:id", controllers.HandleTenantFunc(container, "updateTenant"))
		tenants.DELETE("/:id", controllers.HandleTenantFunc(container, "deleteTenant"))
	}

	meldungen := vermieter.Group("/meldungen")
	{
		meldungen.GET("", controllers.HandleMeldungFunc(container, "getMeldungen"))
		meldungen.GET("/:id", controllers.HandleMeldungFunc(container, "getMeldung"))
		meldungen.POST("/:id/assign", controllers.HandleMeldungFunc(container, "assignHandwerker"))
		meldungen.POST("/:id/status", controllers.HandleMeldungFunc(container, "changeStatus"))
	}
}

// registerMieterRoutes registers the tenant area
func registerMieterRoutes(auth *gin.RouterGroup, container *container.ServiceContainer) {
	mieter := auth.Group("/mieter")
	mieter.Use(middleware.RequireRole(models.RoleMieter))

	mieter.GET("/dashboard", controllers.GetDashboard(container))
	mieter.GET("/unit", controllers.HandleUnitFunc(container, "getOwnUnit"))

	meldungen := mieter.Group("/meldungen")
	{
		meldungen.GET("", controllers.HandleMeldungFunc(container, "getMeldungen"))
		meldungen.POST("", controllers.HandleMeldungFunc(container, "createMeldung"))
		meldungen.GET("/:id", controllers.HandleMeldungFunc(container, "getMeldung"))
		meldungen.POST("/:id/cancel", controllers.HandleMeldungFunc(container, "cancelMeldung"))
	}
}

// registerHandwerkerRoutes registers the craftsman area
func registerHandwerkerRoutes(auth *gin.RouterGroup, container *container.ServiceContainer) {
	handwerker := auth.Group("/handwerker")
	handwerker.Use(middleware.RequireRole(models.RoleHandwerker))

	handwerker.GET("/dashboard", controllers.GetDashboard(container))

	meldungen := handwerker.Group("/meldungen")
	{
		meldungen.GET("", controllers.HandleMeldungFunc(container, "getMeldungen"))
		meldungen.GET("/:id", controllers.HandleMeldungFunc(container, "getMeldung"))
		meldungen.POST("/:id/complete", controllers.HandleMeldungFunc(container, "completeMeldung"))
	}
}
