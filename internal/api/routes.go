package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/config"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/service"
	"github.com/propflow/propertyflow/internal/storage"
	"github.com/propflow/propertyflow/internal/websocket"
)

// RouterConfig 路由装配依赖
type RouterConfig struct {
	Config        *config.Config
	DB            *gorm.DB
	Hub           *websocket.Hub
	Tokens        *auth.TokenManager
	Users         repository.UserRepository
	Blobs         storage.BlobStore
	AuthService   service.AuthService
	FileService   service.FileService
	UserService   service.UserService
	Notifications service.NotificationService
	MasterData    service.MasterDataService
	Stats         service.StatisticsService
	AuditLogs     service.AuditLogService
}

// SetupRoutes 配置路由
func SetupRoutes(rc *RouterConfig) *gin.Engine {
	if config.IsProduction(rc.Config) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(rc.Config.CORS.AllowedOrigins))
	router.Use(ErrorHandlerMiddleware())
	if rc.Config.Tracing.Enabled {
		router.Use(TracingMiddleware())
	}

	// 健康检查
	healthController := NewHealthController(rc.DB, rc.Hub)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 通知推送
	if rc.Hub != nil && rc.Tokens != nil {
		router.GET("/ws/notifications", websocket.NotificationHandler(rc.Hub, rc.Tokens))
	}

	// 控制器
	authController := NewAuthController(rc.AuthService)
	fileController := NewFileController(rc.FileService, rc.Blobs)
	userController := NewUserController(rc.UserService)
	notificationController := NewNotificationController(rc.Notifications)
	masterDataController := NewMasterDataController(rc.MasterData)
	statsController := NewStatsController(rc.Stats)
	auditLogController := NewAuditLogController(rc.AuditLogs)

	authRequired := auth.Middleware(rc.Tokens, rc.Users)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 登录是唯一的匿名入口,单独限流防止撞库
		v1.POST("/auth/login", RateLimitMiddleware(5, 10), authController.Login)

		authed := v1.Group("", authRequired)
		{
			authed.POST("/auth/logout", authController.Logout)
			authed.GET("/auth/me", authController.Me)

			// 产权文件工作流
			files := authed.Group("/files")
			{
				files.POST("", auth.RequireOperation(auth.OpFileCreate), fileController.Create)
				files.GET("", auth.RequireOperation(auth.OpFileRead), fileController.List)
				files.GET("/:id", auth.RequireOperation(auth.OpFileRead), fileController.Get)
				files.POST("/:id/submit-validation", auth.RequireOperation(auth.OpFileValidation), fileController.SubmitValidation)
				files.POST("/:id/submit-property-data", auth.RequireOperation(auth.OpFilePropertyData), fileController.SubmitPropertyData)
				files.POST("/:id/approve", auth.RequireOperation(auth.OpFileVerify), fileController.Approve)
				files.POST("/:id/reject", auth.RequireOperation(auth.OpFileVerify), fileController.Reject)
				files.POST("/:id/mark-printed", auth.RequireOperation(auth.OpFileMarkPrinted), fileController.MarkPrinted)
				files.POST("/:id/hold", auth.RequireOperation(auth.OpFileHold), fileController.Hold)
				files.POST("/:id/resume", auth.RequireOperation(auth.OpFileHold), fileController.Resume)
				files.POST("/:id/cancel", auth.RequireOperation(auth.OpFileCancel), fileController.Cancel)
				files.POST("/:id/documents", auth.RequireOperation(auth.OpFileRead), fileController.UploadDocument)
				files.GET("/:id/documents/:doc_id/download", auth.RequireOperation(auth.OpFileRead), fileController.DownloadDocument)
			}

			// 通知
			notifications := authed.Group("/notifications")
			{
				notifications.GET("", notificationController.List)
				notifications.PUT("/:id/read", notificationController.MarkRead)
				notifications.DELETE("/:id", notificationController.Delete)
			}

			// 用户管理
			users := authed.Group("/users")
			{
				users.GET("", auth.RequireOperation(auth.OpUserRead), userController.List)
				users.GET("/positions/:position", auth.RequireOperation(auth.OpUserRead), userController.ListByPosition)
				users.GET("/:id", auth.RequireOperation(auth.OpUserRead), userController.Get)
				users.POST("", auth.RequireOperation(auth.OpUserManage), userController.Create)
				users.PUT("/:id", auth.RequireOperation(auth.OpUserManage), userController.Update)
				users.DELETE("/:id", auth.RequireOperation(auth.OpUserManage), userController.Deactivate)
			}

			// 主数据
			masterData := authed.Group("/master-data")
			{
				read := auth.RequireOperation(auth.OpMasterDataRead)
				manage := auth.RequireOperation(auth.OpMasterDataManage)

				masterData.GET("/banks", read, masterDataController.ListBanks)
				masterData.POST("/banks", manage, masterDataController.SaveBank)
				masterData.DELETE("/banks/:id", manage, masterDataController.DeleteBank)

				masterData.GET("/property-types", read, masterDataController.ListPropertyTypes)
				masterData.POST("/property-types", manage, masterDataController.SavePropertyType)
				masterData.DELETE("/property-types/:id", manage, masterDataController.DeletePropertyType)

				masterData.GET("/locations", read, masterDataController.ListLocations)
				masterData.POST("/locations", manage, masterDataController.SaveLocation)
				masterData.DELETE("/locations/:id", manage, masterDataController.DeleteLocation)

				masterData.GET("/configurations", manage, masterDataController.ListConfigurations)
				masterData.POST("/configurations", manage, masterDataController.SaveConfiguration)
				masterData.DELETE("/configurations/:id", manage, masterDataController.DeleteConfiguration)
			}

			// 统计
			stats := authed.Group("/stats", auth.RequireOperation(auth.OpStatsRead))
			{
				stats.GET("/overall", statsController.Overall)
				stats.GET("/dashboard", statsController.Dashboard)
			}

			// 审计日志
			auditLogs := authed.Group("/audit-logs", auth.RequireOperation(auth.OpAuditRead))
			{
				auditLogs.GET("", auditLogController.Recent)
				auditLogs.GET("/users/:id", auditLogController.ByUser)
				auditLogs.GET("/objects/:model/:id", auditLogController.ByObject)
			}
		}
	}

	// 未匹配路由返回 JSON 404
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    404,
			Message: "route not found",
		})
	})

	return router
}
