package controllers

import (
	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// PropertyController handles the properties of the authenticated Vermieter
type PropertyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPropertyController creates a property controller for one request
func NewPropertyController(ctx *gin.Context, container *container.ServiceContainer) *PropertyController {
	return &PropertyController{Ctx: ctx, Container: container}
}

// PropertyRequest is the property form
type PropertyRequest struct {
	Name        string `json:"name" binding:"required" example:"Lindenhof"`
	Street      string `json:"street" binding:"required" example:"Lindenstraße 12"`
	ZipCode     string `json:"zip_code" binding:"required" example:"10969"`
	City        string `json:"city" binding:"required" example:"Berlin"`
	Description string `json:"description" example:"Altbau, 6 Parteien"`
}

func (r PropertyRequest) input() services.PropertyInput {
	return services.PropertyInput{
		Name:        r.Name,
		Street:      r.Street,
		ZipCode:     r.ZipCode,
		City:        r.City,
		Description: r.Description,
	}
}

// HandlePropertyFunc returns the gin handler for a property method
func HandlePropertyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPropertyController(ctx, container)

		switch method {
		case "getProperties":
			controller.GetProperties()
		case "getProperty":
			controller.GetProperty()
		case "createProperty":
			controller.CreateProperty()
		case "updateProperty":
			controller.UpdateProperty()
		case "deleteProperty":
			controller.DeleteProperty()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *PropertyController) service() services.InterfacePropertyService {
	return c.Container.GetService("property").(services.InterfacePropertyService)
}

// 1 GetProperties lists own properties
// @Summary      List properties
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Name, street or city"
// @Param        page query int false "Page, default 1"
// @Param        page_size query int false "Page size, default 10"
// @Success      200  {object}  SuccessResponse{data=ListResponse{items=[]models.Property}}
// @Router       /vermieter/properties [get]
func (c *PropertyController) GetProperties() {
	q := pagination(c.Ctx)
	properties, total, err := c.service().ListProperties(middleware.CurrentUserID(c.Ctx), c.Ctx.Query("search"), q)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, newList(properties, total, q))
}

// 2 GetProperty returns one own property with its units
// @Summary      Get property
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Property ID"
// @Success      200  {object}  SuccessResponse{data=models.Property}
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/properties/{id} [get]
func (c *PropertyController) GetProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
		return
	}
	property, err := c.service().GetProperty(middleware.CurrentUserID(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 3 CreateProperty creates a property
// @Summary      Create property
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PropertyRequest true "Property"
// @Success      201  {object}  SuccessResponse{data=models.Property}
// @Failure      400  {object}  ErrorResponse
// @Router       /vermieter/properties [post]
func (c *PropertyController) CreateProperty() {
	var req PropertyRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	property, err := c.service().CreateProperty(middleware.CurrentUserID(c.Ctx), req.input())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, property)
}

// 4 UpdateProperty replaces the property form
// @Summary      Update property
// @Tags         Vermieter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Property ID"
// @Param        request body PropertyRequest true "Property"
// @Success      200  {object}  SuccessResponse{data=models.Property}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/properties/{id} [put]
func (c *PropertyController) UpdateProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
		return
	}
	var req PropertyRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	property, err := c.service().UpdateProperty(middleware.CurrentUserID(c.Ctx), id, req.input())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 5 DeleteProperty deletes a property without tenants
// @Summary      Delete property
// @Description  Refused with 409 while any unit is occupied
// @Tags         Vermieter
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Property ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/properties/{id} [delete]
func (c *PropertyController) DeleteProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
		return
	}
	if err := c.service().DeleteProperty(middleware.CurrentUserID(c.Ctx), id); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
