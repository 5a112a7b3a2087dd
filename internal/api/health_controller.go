package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/websocket"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	db  *gorm.DB
	hub *websocket.Hub
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB, hub *websocket.Hub) *HealthController {
	return &HealthController{
		db:  db,
		hub: hub,
	}
}

// Check 健康检查
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	// 检查数据库连接
	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	// WebSocket 通知通道在线连接数
	if c.hub != nil {
		checks["websocket"] = "healthy"
	} else {
		checks["websocket"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}
	if c.hub != nil {
		body["websocket_clients"] = c.hub.ClientCount()
	}

	ctx.JSON(httpStatus, body)
}

// checkDatabase 检查数据库连接
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
