package controllers

import (
	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// SubscriptionController handles the Vermieter's subscription plan
type SubscriptionController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSubscriptionController creates a subscription controller for one request
func NewSubscriptionController(ctx *gin.Context, container *container.ServiceContainer) *SubscriptionController {
	return &SubscriptionController{Ctx: ctx, Container: container}
}

// CheckoutRequest selects the plan to buy
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required" example:"PREMIUM"`
}

// HandleSubscriptionFunc returns the gin handler for a subscription method
func HandleSubscriptionFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSubscriptionController(ctx, container)

		switch method {
		case "getSubscription":
			controller.GetSubscription()
		case "getPlans":
			controller.GetPlans()
		case "checkout":
			controller.Checkout()
		case "cancel":
			controller.Cancel()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *SubscriptionController) service() services.InterfaceSubscriptionService {
	return c.Container.GetService("subscription").(services.InterfaceSubscriptionService)
}

// 1 GetSubscription returns plan, status and unit usage
// @Summary      Current subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.SubscriptionView}
// @Router       /subscription [get]
func (c *SubscriptionController) GetSubscription() {
	view, err := c.service().GetSubscription(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, view)
}

// 2 GetPlans returns the plan catalogue
// @Summary      Plans
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.PlanInfo}
// @Router       /subscription/plans [get]
func (c *SubscriptionController) GetPlans() {
	response.Success(c.Ctx, c.service().Plans())
}

// 3 Checkout starts the payment of a plan
// @Summary      Checkout
// @Description  Creates a payment order; the plan stays PENDING until the payment is confirmed
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckoutRequest true "Plan"
// @Success      200  {object}  SuccessResponse{data=services.PaymentOrder}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      501  {object}  ErrorResponse
// @Router       /subscription/checkout [post]
func (c *SubscriptionController) Checkout() {
	var req CheckoutRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	order, err := c.service().Checkout(c.Ctx.Request.Context(), middleware.CurrentUserID(c.Ctx), models.SubscriptionPlan(req.Plan))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, order)
}

// 4 Cancel cancels the premium plan
// @Summary      Cancel subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.SubscriptionView}
// @Failure      409  {object}  ErrorResponse
// @Router       /subscription/cancel [post]
func (c *SubscriptionController) Cancel() {
	view, err := c.service().Cancel(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, view)
}
