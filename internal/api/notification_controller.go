package api

import (
	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/service"
)

// NotificationController 通知控制器
type NotificationController struct {
	notifications service.NotificationService
}

// NewNotificationController 创建通知控制器
func NewNotificationController(notifications service.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// List 查询当前用户可见的通知
func (c *NotificationController) List(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	page := parseIntQuery(ctx, "page", 1)
	pageSize := parseIntQuery(ctx, "page_size", 20)

	notifications, total, err := c.notifications.List(id.ID, page, pageSize)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Paginated(ctx, notifications, NewPagination(page, pageSize, total))
}

// MarkRead 标记通知已读
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.notifications.MarkRead(ctx.Param("id"), id.ID); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}

// Delete 删除通知
func (c *NotificationController) Delete(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	if err := c.notifications.Delete(ctx.Param("id"), id.ID); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, nil)
}
