package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	defaultPageSize     int
}

func NewNotificationHandler(notificationService *service.NotificationService, defaultPageSize int) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		defaultPageSize:     defaultPageSize,
	}
}

// List GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var query dto.NotificationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}
	page, pageSize := normalizePage(query.Page, query.PageSize, h.defaultPageSize)

	items, total, err := h.notificationService.List(userID, page, pageSize, query.UnreadOnly)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// MarkRead POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通知ID")
		return
	}

	if err := h.notificationService.MarkRead(userID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, nil)
}

// MarkAllRead POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.MarkAllReadResponse{Updated: updated})
}

// Delete DELETE /api/v1/notifications/:id（管理员）
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通知ID")
		return
	}

	if err := h.notificationService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, nil)
}
