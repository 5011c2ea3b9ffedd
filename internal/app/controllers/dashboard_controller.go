package controllers

import (
	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/response"
)

// GetDashboard returns the role specific key figures of the caller
// @Summary      Dashboard
// @Description  Figures depend on the role; cached for 30 seconds and refreshed on changes
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.Dashboard}
// @Router       /vermieter/dashboard [get]
// @Router       /mieter/dashboard [get]
// @Router       /handwerker/dashboard [get]
func GetDashboard(container *container.ServiceContainer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dashboards := container.GetService("dashboard").(services.InterfaceDashboardService)
		dashboard, err := dashboards.GetDashboard(middleware.CurrentUserID(ctx), middleware.CurrentRole(ctx))
		if err != nil {
			response.FromError(ctx, err)
			return
		}
		response.Success(ctx, dashboard)
	}
}
