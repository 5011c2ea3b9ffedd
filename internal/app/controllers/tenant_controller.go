package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// TenantController handles the Mieter accounts of a Vermieter
type TenantController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTenantController creates a tenant controller for one request
func NewTenantController(ctx *gin.Context, container *container.ServiceContainer) *TenantController {
	return &TenantController{Ctx: ctx, Container: container}
}

// CreateTenantRequest creates a Mieter account
type CreateTenantRequest struct {
	Email      string     `json:"email" binding:"required,email" example:"max.mueller@example.de"`
	Password   string     `json:"password" binding:"required" example:"willkommen1"`
	FirstName  string     `json:"first_name" binding:"required" example:"Max"`
	LastName   string     `json:"last_name" binding:"required" example:"Müller"`
	Phone      string     `json:"phone" example:"+49 171 2345678"`
	UnitID     *uint      `json:"unit_id" example:"4"`
	MoveInDate *time.Time `json:"move_in_date" example:"2024-04-01T00:00:00Z"`
}

// UpdateTenantRequest changes a Mieter account; omitted fields stay unchanged
type UpdateTenantRequest struct {
	Email     *string `json:"email" binding:"omitempty,email" example:"max.mueller@example.de"`
	FirstName *string `json:"first_name" example:"Max"`
	LastName  *string `json:"last_name" example:"Müller"`
	Phone     *string `json:"phone" example:"+49 171 2345678"`
	Active    *bool   `json:"active" example:"true"`
}

// HandleTenantFunc returns the gin handler for a tenant method
func HandleTenantFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTenantController(ctx, container)

		switch method {
		case "getTenants":
			controller.GetTenants()
		case "getTenant":
			controller.GetTenant()
		case "createTenant":
			controller.CreateTenant()
		case "updateTenant":
			controller.UpdateTenant()
		case "deleteTenant":
			controller.DeleteTenant()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *TenantController) service() services.InterfaceTenantService {
	return c.Container.GetService("tenant").(services.InterfaceTenantService)
}

// 1 GetTenants lists the Vermieter's Mieter
// @Summary      List tenants
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Name or email"
// @Param        page query int false "Page, default 1"
// @Param        page_size query int false "Page size, default 10"
// @Success      200  {object}  SuccessResponse{data=ListResponse{items=[]services.TenantView}}
// @Router       /vermieter/tenants [get]
func (c *TenantController) GetTenants() {
	q := pagination(c.Ctx)
	tenants, total, err := c.service().ListTenants(middleware.CurrentUserID(c.Ctx), c.Ctx.Query("search"), q)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, newList(tenants, total, q))
}

// 2 GetTenant returns one Mieter
// @Summary      Get tenant
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Tenant ID"
// @Success      200  {object}  SuccessResponse{data=services.TenantView}
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/tenants/{id} [get]
func (c *TenantController) GetTenant() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Mieter-ID")
		return
	}
	tenant, err := c.service().GetTenant(middleware.CurrentUserID(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenant)
}

// 3 CreateTenant creates a Mieter account and optionally assigns a unit
// @Summary      Create tenant
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTenantRequest true "Tenant"
// @Success      201  {object}  SuccessResponse{data=services.TenantView}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/tenants [post]
func (c *TenantController) CreateTenant() {
	var req CreateTenantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	tenant, err := c.service().CreateTenant(middleware.CurrentUserID(c.Ctx), services.TenantInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		UnitID:     req.UnitID,
		MoveInDate: req.MoveInDate,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, tenant)
}

// 4 UpdateTenant changes a Mieter account
// @Summary      Update tenant
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Tenant ID"
// @Param        request body UpdateTenantRequest true "Changed fields"
// @Success      200  {object}  SuccessResponse{data=services.TenantView}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/tenants/{id} [put]
func (c *TenantController) UpdateTenant() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Mieter-ID")
		return
	}
	var req UpdateTenantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	tenant, err := c.service().UpdateTenant(middleware.CurrentUserID(c.Ctx), id, services.TenantUpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Active:    req.Active,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, tenant)
}

// 5 DeleteTenant ends the tenancy and deactivates the account
// @Summary      Delete tenant
// @Description  The unit is freed and the account deactivated; messages and Meldungen stay
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Tenant ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/tenants/{id} [delete]
func (c *TenantController) DeleteTenant() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Mieter-ID")
		return
	}
	if err := c.service().DeleteTenant(middleware.CurrentUserID(c.Ctx), id); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
