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

// AuthController handles registration, login and logout
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController creates an auth controller for one request
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{Ctx: ctx, Container: container}
}

// RegisterRequest is the self-registration form of Vermieter and Handwerker
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"anna.schmidt@example.de"`
	Password  string `json:"password" binding:"required" example:"geheim123"`
	FirstName string `json:"first_name" binding:"required" example:"Anna"`
	LastName  string `json:"last_name" binding:"required" example:"Schmidt"`
	Phone     string `json:"phone" example:"+49 30 1234567"`
	Role      string `json:"role" binding:"required" example:"VERMIETER"` // VERMIETER or HANDWERKER
	Trade     string `json:"trade" example:"Sanitär"`
}

// LoginRequest holds the credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"anna.schmidt@example.de"`
	Password string `json:"password" binding:"required" example:"geheim123"`
}

// HandleAuthFunc returns the gin handler for an auth method
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "register":
			controller.Register()
		case "login":
			controller.Login()
		case "logout":
			controller.Logout()
		case "me":
			controller.Me()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *AuthController) jwt() services.InterfaceJWTService {
	return c.Container.GetService("jwt").(services.InterfaceJWTService)
}

// 1 Register creates a Vermieter or Handwerker account
// @Summary      Register
// @Description  Self-registration for Vermieter and Handwerker. Mieter accounts are created by their Vermieter.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration form"
// @Success      201  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register [post]
func (c *AuthController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		response.Fail(c.Ctx, code.ErrRoleNotAllowed, nil)
		return
	}

	user, err := c.jwt().Register(services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		Trade:     req.Trade,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, user)
}

// 2 Login checks the credentials and returns a bearer token
// @Summary      Login
// @Description  Returns a bearer token and the user; the role decides which dashboard the client opens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  SuccessResponse{data=services.LoginResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}

	result, err := c.jwt().Login(req.Email, req.Password)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}

// 3 Logout revokes the current token
// @Summary      Logout
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (c *AuthController) Logout() {
	if err := c.jwt().Logout(middleware.CurrentClaims(c.Ctx)); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}

// 4 Me returns the authenticated user
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (c *AuthController) Me() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.GetUserByID(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}
