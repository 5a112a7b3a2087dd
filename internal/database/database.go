package database

import (
	"context"
	"fmt"
	"time"

	"github.com/propflow/propertyflow/internal/config"
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// Connect 连接数据库并配置连接池
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := poolFromConfig(cfg)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// poolFromConfig 从配置读取连接池参数,缺省值补齐
func poolFromConfig(cfg config.DatabaseConfig) *PoolConfig {
	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = 10
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = 100
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = 3600
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = 600
	}
	return pool
}

// ConnectWithRetry 带重试的数据库连接,指数退避
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// SQLite 不支持 jsonb,AutoMigrate 会把 jsonb 列降级为 TEXT,可直接使用
	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.PropertyFileModel{},
		&model.ValidationDataModel{},
		&model.ValidationPhotoModel{},
		&model.PropertyDataModel{},
		&model.DocumentModel{},
		&model.NotificationModel{},
		&model.AuditLogModel{},
		&model.StatusHistoryModel{},
		&model.BankModel{},
		&model.PropertyTypeModel{},
		&model.LocationModel{},
		&model.SystemConfigurationModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// property_files 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_files_status_validator ON property_files(status, validator_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_files_status_validator: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_files_status_keyin ON property_files(status, key_in_operator_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_files_status_keyin: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_files_status_officer ON property_files(status, verification_officer_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_files_status_officer: %w", err)
	}

	// notifications 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read ON notifications(recipient_id, is_read)").Error; err != nil {
		return fmt.Errorf("failed to create idx_notifications_recipient_read: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_object ON audit_logs(model_name, object_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_object: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_validation_extended_gin ON validation_data USING GIN (extended_data)").Error; err != nil {
			return fmt.Errorf("failed to create idx_validation_extended_gin: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_property_custom_gin ON property_data USING GIN (custom_data)").Error; err != nil {
			return fmt.Errorf("failed to create idx_property_custom_gin: %w", err)
		}
	}

	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
