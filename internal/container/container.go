package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/config"
	"github.com/propflow/propertyflow/internal/database"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/service"
	"github.com/propflow/propertyflow/internal/storage"
	"github.com/propflow/propertyflow/internal/websocket"
	"github.com/propflow/propertyflow/internal/workflow"
)

// Container 依赖注入容器
// 管理数据库、对象存储、通知通道与所有服务的装配
type Container struct {
	cfg        *config.Config
	db         *gorm.DB
	hub        *websocket.Hub
	blobs      storage.BlobStore
	tokens     *auth.TokenManager
	dispatcher *service.Dispatcher

	userRepo repository.UserRepository

	authService   service.AuthService
	fileService   service.FileService
	userService   service.UserService
	notifications service.NotificationService
	masterData    service.MasterDataService
	stats         service.StatisticsService
	auditLogs     service.AuditLogService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库(带重试机制)
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 对象存储(文档与勘验照片)
	var blobs storage.BlobStore
	if cfg.Storage.AccessKey != "" {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			// 桶检查失败不阻塞启动,上传时再报错
			logrus.WithError(err).Warn("Object storage bucket check failed")
		}
		blobs = store
	} else {
		logrus.Warn("Object storage is not configured, document uploads will fail")
	}

	// 3. WebSocket 通知通道
	hub := websocket.NewHub()
	go hub.Run()

	// 4. JWT 签发器
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// 5. 仓储与服务装配
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	fileRepo := repository.NewFileRepository(db)
	masterDataRepo := repository.NewMasterDataRepository(db)

	dispatcher := service.NewDispatcher(notificationRepo, hub, 256, 4)
	dispatcher.Start()

	auditLogs := service.NewAuditLogService(auditRepo)
	machine := workflow.NewMachine()

	c := &Container{
		cfg:           cfg,
		db:            db,
		hub:           hub,
		blobs:         blobs,
		tokens:        tokens,
		dispatcher:    dispatcher,
		userRepo:      userRepo,
		authService:   service.NewAuthService(userRepo, tokens, auditLogs),
		fileService:   service.NewFileService(db, machine, dispatcher),
		userService:   service.NewUserService(userRepo, auditLogs),
		notifications: service.NewNotificationService(notificationRepo),
		masterData:    service.NewMasterDataService(masterDataRepo, auditLogs),
		stats:         service.NewStatisticsService(fileRepo),
		auditLogs:     auditLogs,
	}
	return c, nil
}

// Config 获取应用配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub 获取 WebSocket 通知通道
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// Blobs 获取对象存储
func (c *Container) Blobs() storage.BlobStore {
	return c.blobs
}

// Tokens 获取 JWT 签发器
func (c *Container) Tokens() *auth.TokenManager {
	return c.tokens
}

// Users 获取用户仓储
func (c *Container) Users() repository.UserRepository {
	return c.userRepo
}

// AuthService 获取认证服务
func (c *Container) AuthService() service.AuthService {
	return c.authService
}

// FileService 获取产权文件服务
func (c *Container) FileService() service.FileService {
	return c.fileService
}

// UserService 获取用户管理服务
func (c *Container) UserService() service.UserService {
	return c.userService
}

// NotificationService 获取通知服务
func (c *Container) NotificationService() service.NotificationService {
	return c.notifications
}

// MasterDataService 获取主数据服务
func (c *Container) MasterDataService() service.MasterDataService {
	return c.masterData
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.stats
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogs
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.dispatcher != nil {
		c.dispatcher.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
