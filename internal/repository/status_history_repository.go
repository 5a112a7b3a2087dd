package repository

import (
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// StatusHistoryRepository 状态历史仓储接口
type StatusHistoryRepository interface {
	Append(h *model.StatusHistoryModel) error
	FindByFile(fileID string) ([]*model.StatusHistoryModel, error)
}

// statusHistoryRepository 状态历史仓储实现
type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository 创建状态历史仓储
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

// Append 追加状态历史
func (r *statusHistoryRepository) Append(h *model.StatusHistoryModel) error {
	return r.db.Create(h).Error
}

// FindByFile 查找某文件的状态历史,按时间正序
func (r *statusHistoryRepository) FindByFile(fileID string) ([]*model.StatusHistoryModel, error) {
	var history []*model.StatusHistoryModel
	err := r.db.Where("property_file_id = ?", fileID).
		Order("created_at ASC").
		Find(&history).Error
	return history, err
}
