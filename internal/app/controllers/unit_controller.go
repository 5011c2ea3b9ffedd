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

// UnitController handles units of the Vermieter and the Mieter's own unit
type UnitController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUnitController creates a unit controller for one request
func NewUnitController(ctx *gin.Context, container *container.ServiceContainer) *UnitController {
	return &UnitController{Ctx: ctx, Container: container}
}

// UnitRequest is the unit form
type UnitRequest struct {
	Designation string  `json:"designation" binding:"required" example:"EG links"`
	Floor       int     `json:"floor" example:"0"`
	Area        float64 `json:"area" example:"68.5"`
	Rooms       float64 `json:"rooms" example:"2.5"`
	RentCold    float64 `json:"rent_cold" example:"750"`
	Utilities   float64 `json:"utilities" example:"180"`
}

func (r UnitRequest) input() services.UnitInput {
	return services.UnitInput{
		Designation: r.Designation,
		Floor:       r.Floor,
		Area:        r.Area,
		Rooms:       r.Rooms,
		RentCold:    r.RentCold,
		Utilities:   r.Utilities,
	}
}

// AssignTenantRequest moves a Mieter into a unit
type AssignTenantRequest struct {
	MieterID   uint       `json:"mieter_id" binding:"required" example:"3"`
	MoveInDate *time.Time `json:"move_in_date" example:"2024-04-01T00:00:00Z"`
}

// HandleUnitFunc returns the gin handler for a unit method
func HandleUnitFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUnitController(ctx, container)

		switch method {
		case "getUnits":
			controller.GetUnits()
		case "getUnit":
			controller.GetUnit()
		case "createUnit":
			controller.CreateUnit()
		case "updateUnit":
			controller.UpdateUnit()
		case "deleteUnit":
			controller.DeleteUnit()
		case "assignTenant":
			controller.AssignTenant()
		case "removeTenant":
			controller.RemoveTenant()
		case "getOwnUnit":
			controller.GetOwnUnit()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *UnitController) service() services.InterfaceUnitService {
	return c.Container.GetService("unit").(services.InterfaceUnitService)
}

func (c *UnitController) unitID() (uint, bool) {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Wohneinheits-ID")
	}
	return id, ok
}

// 1 GetUnits lists the units of an own property
// @Summary      List units of a property
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Property ID"
// @Success      200  {object}  SuccessResponse{data=[]services.UnitView}
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/properties/{id}/units [get]
func (c *UnitController) GetUnits() {
	propertyID, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
		return
	}
	units, err := c.service().ListUnits(middleware.CurrentUserID(c.Ctx), propertyID)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, units)
}

// 2 GetUnit returns one own unit
// @Summary      Get unit
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Unit ID"
// @Success      200  {object}  SuccessResponse{data=services.UnitView}
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/units/{id} [get]
func (c *UnitController) GetUnit() {
	id, ok := c.unitID()
	if !ok {
		return
	}
	unit, err := c.service().GetUnit(middleware.CurrentUserID(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 3 CreateUnit adds a unit to an own property
// @Summary      Create unit
// @Description  Limited by the unit limit of the subscription plan
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Property ID"
// @Param        request body UnitRequest true "Unit"
// @Success      201  {object}  SuccessResponse{data=services.UnitView}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/properties/{id}/units [post]
func (c *UnitController) CreateUnit() {
	propertyID, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
		return
	}
	var req UnitRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	unit, err := c.service().CreateUnit(middleware.CurrentUserID(c.Ctx), propertyID, req.input())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, unit)
}

// 4 UpdateUnit replaces the unit form
// @Summary      Update unit
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Unit ID"
// @Param        request body UnitRequest true "Unit"
// @Success      200  {object}  SuccessResponse{data=services.UnitView}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/units/{id} [put]
func (c *UnitController) UpdateUnit() {
	id, ok := c.unitID()
	if !ok {
		return
	}
	var req UnitRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	unit, err := c.service().UpdateUnit(middleware.CurrentUserID(c.Ctx), id, req.input())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 5 DeleteUnit deletes a vacant unit
// @Summary      Delete unit
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Unit ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/units/{id} [delete]
func (c *UnitController) DeleteUnit() {
	id, ok := c.unitID()
	if !ok {
		return
	}
	if err := c.service().DeleteUnit(middleware.CurrentUserID(c.Ctx), id); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}

// 6 AssignTenant moves a Mieter into a vacant unit
// @Summary      Assign tenant
// @Description  A unit has at most one active tenant and a Mieter lives in at most one unit
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Unit ID"
// @Param        request body AssignTenantRequest true "Tenant"
// @Success      200  {object}  SuccessResponse{data=services.UnitView}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/units/{id}/tenant [post]
func (c *UnitController) AssignTenant() {
	id, ok := c.unitID()
	if !ok {
		return
	}
	var req AssignTenantRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	unit, err := c.service().AssignTenant(middleware.CurrentUserID(c.Ctx), id, req.MieterID, req.MoveInDate)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 7 RemoveTenant ends the tenancy of the unit
// @Summary      Remove tenant
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Unit ID"
// @Success      200  {object}  SuccessResponse{data=services.UnitView}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/units/{id}/tenant [delete]
func (c *UnitController) RemoveTenant() {
	id, ok := c.unitID()
	if !ok {
		return
	}
	unit, err := c.service().RemoveTenant(middleware.CurrentUserID(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, unit)
}

// 8 GetOwnUnit returns the Mieter's unit with the landlord contact
// @Summary      Own unit
// @Tags         Mieter
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.MieterUnitView}
// @Failure      400  {object}  ErrorResponse
// @Router       /mieter/unit [get]
func (c *UnitController) GetOwnUnit() {
	view, err := c.service().GetUnitForMieter(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, view)
}
