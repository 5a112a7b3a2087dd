package api

import (
	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/service"
)

// StatsController 统计控制器
type StatsController struct {
	stats service.StatisticsService
}

// NewStatsController 创建统计控制器
func NewStatsController(stats service.StatisticsService) *StatsController {
	return &StatsController{stats: stats}
}

// Overall 全局文件状态分布
func (c *StatsController) Overall(ctx *gin.Context) {
	overall, err := c.stats.Overall()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, overall)
}

// Dashboard 当前用户的工作台统计
func (c *StatsController) Dashboard(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	dashboard, err := c.stats.Dashboard(id.Actor())
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	Success(ctx, dashboard)
}
