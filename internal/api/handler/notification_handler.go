package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List 我的通知（未过期）
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.notificationSvc.List(c.Request.Context(), actor, req.OnlyUnread)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// UnreadCount 未读通知数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"count": count})
}

// MarkRead 单条标记已读
// POST /api/v1/notifications/read/:id
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// MarkAllRead 全部标记已读
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), actor); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Broadcast 系统广播（管理员）
// POST /api/v1/notifications/broadcast
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	count, err := h.notificationSvc.Broadcast(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"sent": count})
}
