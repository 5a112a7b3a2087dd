package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/propflow/propertyflow/internal/api"
	"github.com/propflow/propertyflow/internal/config"
	"github.com/propflow/propertyflow/internal/container"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the PropertyFlow API server.
The server will listen on the configured host and port, and provide
REST API interfaces for the property-verification workflow, a WebSocket
channel for notification push, and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化日志
		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logrus.SetFormatter(logger.Formatter)
		logrus.SetLevel(logger.GetLevel())
		logrus.SetOutput(logger.Out)

		// 3. 配置热更新: 配置文件变更时调整日志级别
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				level, err := logrus.ParseLevel(newCfg.Log.Level)
				if err != nil {
					logrus.WithField("level", newCfg.Log.Level).Warn("Ignoring invalid log level from config file")
					return
				}
				logrus.SetLevel(level)
				api.SetLoggerLevel(level)
				logrus.WithField("level", level.String()).Info("Log level updated from config file")
			})
			if err := watcher.Start(); err != nil {
				logrus.WithError(err).Warn("Config watcher could not start, hot reload disabled")
			} else {
				defer watcher.Stop()
			}
		}

		// 4. 链路追踪
		if cfg.Tracing.Enabled {
			if err := api.InitTracing("propertyflow", cfg.Tracing.JaegerEndpoint); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = api.ShutdownTracing(ctx)
			}()
		}

		// 5. 初始化容器
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 6. 设置路由
		router := api.SetupRoutes(&api.RouterConfig{
			Config:        cfg,
			DB:            ctr.DB(),
			Hub:           ctr.Hub(),
			Tokens:        ctr.Tokens(),
			Users:         ctr.Users(),
			Blobs:         ctr.Blobs(),
			AuthService:   ctr.AuthService(),
			FileService:   ctr.FileService(),
			UserService:   ctr.UserService(),
			Notifications: ctr.NotificationService(),
			MasterData:    ctr.MasterDataService(),
			Stats:         ctr.StatisticsService(),
			AuditLogs:     ctr.AuditLogService(),
		})

		// 7. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器(在 goroutine 中)
		go func() {
			logrus.WithField("addr", addr).Info("Server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Fatal("Failed to start server")
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logrus.Info("Shutting down server...")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Fatal("Server forced to shutdown")
		}

		logrus.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
