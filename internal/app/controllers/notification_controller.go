package controllers

import (
	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/app/middleware"
	"immofox-http-service/internal/domain/services"
	"immofox-http-service/internal/domain/services/container"
	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/response"
)

// NotificationController handles the notification list of the caller
type NotificationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNotificationController creates a notification controller for one request
func NewNotificationController(ctx *gin.Context, container *container.ServiceContainer) *NotificationController {
	return &NotificationController{Ctx: ctx, Container: container}
}

// HandleNotificationFunc returns the gin handler for a notification method
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNotificationController(ctx, container)

		switch method {
		case "getNotifications":
			controller.GetNotifications()
		case "unreadCount":
			controller.UnreadCount()
		case "markRead":
			controller.MarkRead()
		case "markAllRead":
			controller.MarkAllRead()
		case "deleteNotification":
			controller.DeleteNotification()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "Ungültige Methode", nil)
		}
	}
}

func (c *NotificationController) service() services.InterfaceNotificationService {
	return c.Container.GetService("notification").(services.InterfaceNotificationService)
}

// 1 GetNotifications lists the caller's notifications, newest first
// @Summary      List notifications
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "Only unread"
// @Param        page query int false "Page, default 1"
// @Param        page_size query int false "Page size, default 10"
// @Success      200  {object}  SuccessResponse{data=ListResponse{items=[]models.Notification}}
// @Router       /notifications [get]
func (c *NotificationController) GetNotifications() {
	q := pagination(c.Ctx)
	unreadOnly := c.Ctx.Query("unread") == "true"
	list, total, err := c.service().List(middleware.CurrentUserID(c.Ctx), unreadOnly, q)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, newList(list, total, q))
}

// 2 UnreadCount returns the number of unread notifications
// @Summary      Unread notification count
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=map[string]int64}
// @Router       /notifications/unread-count [get]
func (c *NotificationController) UnreadCount() {
	count, err := c.service().UnreadCount(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"count": count})
}

// 3 MarkRead marks one notification read
// @Summary      Mark notification read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Notification ID"
// @Success      200  {object}  SuccessResponse{data=models.Notification}
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [put]
func (c *NotificationController) MarkRead() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Benachrichtigungs-ID")
		return
	}
	n, err := c.service().MarkRead(middleware.CurrentUserID(c.Ctx), id)
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, n)
}

// 4 MarkAllRead marks all notifications read
// @Summary      Mark all notifications read
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=map[string]int64}
// @Router       /notifications/read-all [put]
func (c *NotificationController) MarkAllRead() {
	updated, err := c.service().MarkAllRead(middleware.CurrentUserID(c.Ctx))
	if err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"updated": updated})
}

// 5 DeleteNotification deletes one notification
// @Summary      Delete notification
// @Tags         Notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Notification ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		response.ParamError(c.Ctx, "Ungültige Benachrichtigungs-ID")
		return
	}
	if err := c.service().Delete(middleware.CurrentUserID(c.Ctx), id); err != nil {
		response.FromError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, nil)
}
