package repository

import (
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// AuditLogRepository 审计日志仓储接口
// 只有追加和只读查询,不提供更新或删除
type AuditLogRepository interface {
	Append(log *model.AuditLogModel) error
	FindByUserID(userID string, limit int) ([]*model.AuditLogModel, error)
	FindByObject(modelName string, objectID string) ([]*model.AuditLogModel, error)
	FindRecent(limit int) ([]*model.AuditLogModel, error)
}

// auditLogRepository 审计日志仓储实现
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓储
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append 追加审计日志
func (r *auditLogRepository) Append(log *model.AuditLogModel) error {
	return r.db.Create(log).Error
}

// FindByUserID 根据用户 ID 查找审计日志
func (r *auditLogRepository) FindByUserID(userID string, limit int) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}

// FindByObject 根据受影响对象查找审计日志
func (r *auditLogRepository) FindByObject(modelName string, objectID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.Where("model_name = ? AND object_id = ?", modelName, objectID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// FindRecent 查找最近的审计日志
func (r *auditLogRepository) FindRecent(limit int) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	if limit <= 0 {
		limit = 100
	}
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
