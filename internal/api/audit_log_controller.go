package api

import (
	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/service"
)

// AuditLogController 审计日志控制器
// 只读,仅限管理员
type AuditLogController struct {
	audit service.AuditLogService
}

// NewAuditLogController 创建审计日志控制器
func NewAuditLogController(audit service.AuditLogService) *AuditLogController {
	return &AuditLogController{audit: audit}
}

// Recent 查询最近的审计日志
func (c *AuditLogController) Recent(ctx *gin.Context) {
	limit := parseIntQuery(ctx, "limit", 100)

	logs, err := c.audit.FindRecent(limit)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, logs)
}

// ByUser 查询某用户的审计日志
func (c *AuditLogController) ByUser(ctx *gin.Context) {
	limit := parseIntQuery(ctx, "limit", 100)

	logs, err := c.audit.FindByUser(ctx.Param("id"), limit)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, logs)
}

// ByObject 查询某对象的审计日志
func (c *AuditLogController) ByObject(ctx *gin.Context) {
	logs, err := c.audit.FindByObject(ctx.Param("model"), ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, logs)
}
