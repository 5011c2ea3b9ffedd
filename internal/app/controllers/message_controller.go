package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/app/ws"
	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// MessageController handles the chat between the roles
type MessageController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMessageController creates a message controller for one request
func NewMessageController(ctx *gin.Context, container *container.ServiceContainer) *MessageController {
	return &MessageController{Ctx: ctx, Container: container}
}

// SendMessageRequest is one outgoing message
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required" example:"3"`
	Content    string `json:"content" binding:"required" example:"Der Handwerker kommt morgen um 9 Uhr."`
	MeldungID  *uint  `json:"meldung_id" example:"12"`
}

// HandleMessageFunc returns the gin handler for a message method
func HandleMessageFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMessageController(ctx, container)

		switch method {
		case "getContacts":
			controller.GetContacts()
		case "getConversation":
			controller.GetConversation()
		case "getMessages":
			controller.GetMessages()
		case "sendMessage":
			controller.SendMessage()
		case "unreadCount":
			controller.UnreadCount()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

// HandleWebsocketFunc upgrades the request to the push websocket of the caller
// @Summary      Live events
// @Description  Pushes new messages and notifications. The token may be passed as query parameter.
// @Tags         Messages
// @Security     BearerAuth
// @Param        token query string false "JWT token"
// @Success      101
// @Router       /messages/ws [get]
func HandleWebsocketFunc(hub *ws.Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		hub.Serve(ctx.Writer, ctx.Request, middleware.CurrentUserID(ctx))
	}
}

func (c *MessageController) service() services.InterfaceMessageService {
	return c.Container.GetService("message").(services.InterfaceMessageService)
}

// optionalRole reads an optional role query parameter
func (c *MessageController) optionalRole(name string) (models.Role, bool) {
	raw := c.Ctx.Query(name)
	if raw == "" {
		return "", true
	}
	return models.ParseRole(raw)
}

func (c *MessageController) limit() int {
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "0"))
	return limit
}

// 1 GetContacts lists the allowed chat partners
// @Summary      Chat contacts
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Partner role"
// @Success      200  {object}  SuccessResponse{data=[]models.Contact}
// @Failure      400  {object}  ErrorResponse
// @Router       /messages/contacts [get]
func (c *MessageController) GetContacts() {
	role, ok := c.optionalRole("role")
	if !ok {
		response.ParamError(c.Ctx, "Unbekannte Rolle")
		return
	}
	contacts, err := c.service().Contacts(middleware.CurrentActor(c.Ctx), role)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, contacts)
}

// 2 GetConversation returns the messages with one partner and marks them read
// @Summary      Conversation
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "Partner ID"
// @Param        since query string false "Only messages after this RFC3339 time"
// @Param        limit query int false "Max messages, default 50"
// @Success      200  {object}  SuccessResponse{data=[]models.Message}
// @Failure      403  {object}  ErrorResponse
// @Router       /messages/conversation/{userId} [get]
func (c *MessageController) GetConversation() {
	partnerID, ok := parseID(c.Ctx, "userId")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Benutzer-ID")
		return
	}
	since, ok := parseSince(c.Ctx)
	if !ok {
		response.ParamError(c.Ctx, "since muss RFC3339 sein")
		return
	}
	list, err := c.service().Conversation(middleware.CurrentActor(c.Ctx), partnerID, since, c.limit())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, list)
}

// 3 GetMessages returns the caller's messages with partners of one role
// @Summary      Messages by partner role
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        partner_role query string true "Partner role"
// @Param        since query string false "Only messages after this RFC3339 time"
// @Param        limit query int false "Max messages, default 50"
// @Success      200  {object}  SuccessResponse{data=[]models.Message}
// @Failure      400  {object}  ErrorResponse
// @Router       /messages [get]
func (c *MessageController) GetMessages() {
	role, ok := c.optionalRole("partner_role")
	if !ok || role == "" {
		response.ParamError(c.Ctx, "partner_role fehlt oder ist unbekannt")
		return
	}
	since, ok := parseSince(c.Ctx)
	if !ok {
		response.ParamError(c.Ctx, "since muss RFC3339 sein")
		return
	}
	list, err := c.service().ByPartnerRole(middleware.CurrentActor(c.Ctx), role, since, c.limit())
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, list)
}

// 4 SendMessage sends a message to an allowed partner
// @Summary      Send message
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SendMessageRequest true "Message"
// @Success      201  {object}  SuccessResponse{data=models.Message}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /messages [post]
func (c *MessageController) SendMessage() {
	var req SendMessageRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err)
		return
	}
	msg, err := c.service().Send(middleware.CurrentActor(c.Ctx), services.SendMessageInput{
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		MeldungID:  req.MeldungID,
	})
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, msg)
}

// 5 UnreadCount returns the number of unread messages
// @Summary      Unread message count
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=map[string]int64}
// @Router       /messages/unread-count [get]
func (c *MessageController) UnreadCount() {
	count, err := c.service().UnreadCount(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"count": count})
}
