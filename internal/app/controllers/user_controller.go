package controllers

import (
	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// UserController handles the own profile and the Handwerker directory
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a user controller for one request
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{Ctx: ctx, Container: container}
}

// UpdateProfileRequest changes the own profile; omitted fields stay unchanged
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" example:"Anna"`
	LastName  *string `json:"last_name" example:"Schmidt"`
	Phone     *string `json:"phone" example:"+49 30 1234567"`
	Trade     *string `json:"trade" example:"Elektrik"`
}

// ChangePasswordRequest requires the current password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// HandleUserFunc returns the gin handler for a user method
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getMe":
			controller.GetMe()
		case "updateMe":
			controller.UpdateMe()
		case "changePassword":
			controller.ChangePassword()
		case "listHandwerker":
			controller.ListHandwerker()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *UserController) service() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

// 1 GetMe returns the own profile
// @Summary      Own profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Router       /users/me [get]
func (c *UserController) GetMe() {
	user, err := c.service().GetUserByID(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 2 UpdateMe changes name, phone and trade
// @Summary      Update own profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Router       /users/me [put]
func (c *UserController) UpdateMe() {
	var req UpdateProfileRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	user, err := c.service().UpdateProfile(middleware.CurrentUserID(c.Ctx), services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Trade:     req.Trade,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 3 ChangePassword sets a new password
// @Summary      Change password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Old and new password"
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/password [put]
func (c *UserController) ChangePassword() {
	var req ChangePasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	if err := c.service().ChangePassword(middleware.CurrentUserID(c.Ctx), req.OldPassword, req.NewPassword); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}

// 4 ListHandwerker lists active Handwerker for assignment
// @Summary      Handwerker directory
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        trade query string false "Trade filter, e.g. Sanitär"
// @Success      200  {object}  SuccessResponse{data=[]models.UserSummary}
// @Failure      403  {object}  ErrorResponse
// @Router       /users/handwerker [get]
func (c *UserController) ListHandwerker() {
	users, err := c.service().ListHandwerker(c.Ctx.Query("trade"))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	out := make([]interface{}, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	response.Success(c.Ctx, out)
}
