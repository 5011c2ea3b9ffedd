package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// HealthCheckController answers liveness and readiness checks
type HealthCheckController struct {
	Container *container.ServiceContainer
}

// NewHealthCheckController creates the health controller
func NewHealthCheckController(container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Container: container}
}

// HandleHealthFunc returns the gin handler for a health method
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	controller := NewHealthCheckController(container)
	switch method {
	case "ping":
		return controller.Ping
	case "health":
		return controller.Health
	case "cacheStats":
		return controller.CacheStats
	default:
		return func(ctx *gin.Context) {
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

// Ping answers as long as the process serves requests
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /ping [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "healthy",
	})
}

// Health checks the database and the key value store
// @Summary      Health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthCheckController) Health(c *gin.Context) {
	status := http.StatusOK
	result := gin.H{"time": time.Now().Format(time.RFC3339)}

	dbStatus := "up"
	if sqlDB, err := h.Container.GetDB().DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}
	result["database"] = dbStatus

	// a failing store only degrades token revocation and caching
	store := h.Container.GetService("redis").(services.InterfaceRedisService)
	storeStatus := "up"
	if err := store.Ping(); err != nil {
		storeStatus = "down"
	}
	result["store"] = gin.H{"backend": store.Backend(), "status": storeStatus}

	if status == http.StatusOK {
		result["status"] = "healthy"
	} else {
		result["status"] = "unhealthy"
	}
	c.JSON(status, result)
}

// CacheStats reports the response cache usage
// @Summary      Response cache statistics
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/cache-stats [get]
func (h *HealthCheckController) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CacheStats())
}
