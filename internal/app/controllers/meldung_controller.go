package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// MeldungController handles damage reports for all three roles. Access rules
// are enforced by the service based on the caller's role.
type MeldungController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMeldungController creates a Meldung controller for one request
func NewMeldungController(ctx *gin.Context, container *container.ServiceContainer) *MeldungController {
	return &MeldungController{Ctx: ctx, Container: container}
}

// CreateMeldungRequest is the Mieter's damage report
type CreateMeldungRequest struct {
	Title       string `json:"title" binding:"required" example:"Heizung kalt"`
	Description string `json:"description" binding:"required" example:"Der Heizkörper im Bad wird nicht mehr warm."`
	Category    string `json:"category" example:"Heizung"`
	Priority    string `json:"priority" example:"HOCH"` // NIEDRIG, MITTEL, HOCH, NOTFALL
}

// AssignHandwerkerRequest assigns a Handwerker to a Meldung
type AssignHandwerkerRequest struct {
	HandwerkerID uint   `json:"handwerker_id" binding:"required" example:"7"`
	Note         string `json:"note" example:"Termin bitte mit Mieter abstimmen"`
}

// ChangeStatusRequest moves a Meldung to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required" example:"ABGESCHLOSSEN"`
	Note   string `json:"note" example:"Reparatur abgenommen"`
}

// NoteRequest carries an optional note
type NoteRequest struct {
	Note string `json:"note" example:"Ventil getauscht"`
}

// HandleMeldungFunc returns the gin handler for a Meldung method
func HandleMeldungFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMeldungController(ctx, container)

		switch method {
		case "getMeldungen":
			controller.GetMeldungen()
		case "getMeldung":
			controller.GetMeldung()
		case "createMeldung":
			controller.CreateMeldung()
		case "assignHandwerker":
			controller.AssignHandwerker()
		case "changeStatus":
			controller.ChangeStatus()
		case "cancelMeldung":
			controller.moveTo(models.StatusStorniert)
		case "completeMeldung":
			controller.moveTo(models.StatusHandwerkerErledigt)
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *MeldungController) service() services.InterfaceMeldungService {
	return c.Container.GetService("meldung").(services.InterfaceMeldungService)
}

func (c *MeldungController) meldungID() (uint, bool) {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Meldungs-ID")
	}
	return id, ok
}

// 1 GetMeldungen lists the Meldungen visible to the caller
// @Summary      List Meldungen
// @Description  Vermieter see Meldungen of their properties, Mieter their own, Handwerker the assigned ones
// @Tags         Meldungen
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Status filter"
// @Param        property_id query int false "Property filter (Vermieter)"
// @Param        page query int false "Page, default 1"
// @Param        page_size query int false "Page size, default 10"
// @Success      200  {object}  SuccessResponse{data=ListResponse{items=[]services.MeldungView}}
// @Failure      400  {object}  ErrorResponse
// @Router       /vermieter/meldungen [get]
// @Router       /mieter/meldungen [get]
// @Router       /handwerker/meldungen [get]
func (c *MeldungController) GetMeldungen() {
	filter := services.MeldungFilter{PaginationQuery: pagination(c.Ctx)}
	if raw := c.Ctx.Query("status"); raw != "" {
		status, ok := models.ParseMeldungStatus(raw)
		if !ok {
			response.ParamError(c.Ctx, "Unbekannter Status")
			return
		}
		filter.Status = status
	}
	if raw := c.Ctx.Query("property_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "Ungültige Immobilien-ID")
			return
		}
		filter.PropertyID = uint(id)
	}

	meldungen, total, err := c.service().ListMeldungen(middleware.CurrentActor(c.Ctx), filter)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, newList(meldungen, total, filter.PaginationQuery))
}

// 2 GetMeldung returns one Meldung with history and allowed actions
// @Summary      Get Meldung
// @Tags         Meldungen
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meldung ID"
// @Success      200  {object}  SuccessResponse{data=services.MeldungView}
// @Failure      404  {object}  ErrorResponse
// @Router       /vermieter/meldungen/{id} [get]
// @Router       /mieter/meldungen/{id} [get]
// @Router       /handwerker/meldungen/{id} [get]
func (c *MeldungController) GetMeldung() {
	id, ok := c.meldungID()
	if !ok {
		return
	}
	meldung, err := c.service().GetMeldung(middleware.CurrentActor(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, meldung)
}

// 3 CreateMeldung reports damage in the Mieter's unit
// @Summary      Create Meldung
// @Description  Requires an assigned unit; the Meldung starts OFFEN and the Vermieter is notified
// @Tags         Meldungen
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMeldungRequest true "Meldung"
// @Success      201  {object}  SuccessResponse{data=services.MeldungView}
// @Failure      400  {object}  ErrorResponse
// @Router       /mieter/meldungen [post]
func (c *MeldungController) CreateMeldung() {
	var req CreateMeldungRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	meldung, err := c.service().CreateMeldung(middleware.CurrentUserID(c.Ctx), services.MeldungInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, meldung)
}

// 4 AssignHandwerker assigns a Handwerker and starts the work
// @Summary      Assign Handwerker
// @Tags         Meldungen
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meldung ID"
// @Param        request body AssignHandwerkerRequest true "Handwerker"
// @Success      200  {object}  SuccessResponse{data=services.MeldungView}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/meldungen/{id}/assign [post]
func (c *MeldungController) AssignHandwerker() {
	id, ok := c.meldungID()
	if !ok {
		return
	}
	var req AssignHandwerkerRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	meldung, err := c.service().AssignHandwerker(middleware.CurrentActor(c.Ctx), id, req.HandwerkerID, req.Note)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, meldung)
}

// 5 ChangeStatus moves a Meldung along the status workflow
// @Summary      Change Meldung status
// @Tags         Meldungen
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meldung ID"
// @Param        request body ChangeStatusRequest true "Target status"
// @Success      200  {object}  SuccessResponse{data=services.MeldungView}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /vermieter/meldungen/{id}/status [post]
func (c *MeldungController) ChangeStatus() {
	id, ok := c.meldungID()
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	status, ok := models.ParseMeldungStatus(req.Status)
	if !ok {
		response.ParamError(c.Ctx, "Unbekannter Status")
		return
	}
	c.changeStatus(id, status, req.Note)
}

// 6 moveTo backs the fixed-target routes: Mieter cancel and Handwerker complete
// @Summary      Cancel Meldung
// @Description  Only while OFFEN
// @Tags         Meldungen
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Meldung ID"
// @Param        request body NoteRequest false "Note"
// @Success      200  {object}  SuccessResponse{data=services.MeldungView}
// @Failure      409  {object}  ErrorResponse
// @Router       /mieter/meldungen/{id}/cancel [post]
// @Router       /handwerker/meldungen/{id}/complete [post]
func (c *MeldungController) moveTo(status models.MeldungStatus) {
	id, ok := c.meldungID()
	if !ok {
		return
	}
	var req NoteRequest
	if c.Ctx.Request.ContentLength > 0 {
		if err := c.Ctx.ShouldBindJSON(&req); err != nil {
			response.BindError(c.Ctx, err)
			return
		}
	}
	c.changeStatus(id, status, req.Note)
}

func (c *MeldungController) changeStatus(id uint, status models.MeldungStatus, note string) {
	meldung, err := c.service().ChangeStatus(middleware.CurrentActor(c.Ctx), id, status, note)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, meldung)
}
