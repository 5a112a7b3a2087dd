package repository

import (
	"time"

	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository 通知仓储接口
// 读取时本人通知和广播(recipient_id 为空)一并返回
type NotificationRepository interface {
	Save(n *model.NotificationModel) error
	FindForRecipient(recipientID string, page, pageSize int) ([]*model.NotificationModel, int64, error)
	CountByFile(fileID string) (int64, error)
	MarkRead(id string, recipientID string) (int64, error)
	Delete(id string, recipientID string) (int64, error)
}

// notificationRepository 通知仓储实现
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Save 保存通知
func (r *notificationRepository) Save(n *model.NotificationModel) error {
	return r.db.Save(n).Error
}

// FindForRecipient 查找某用户可见的通知(本人 + 广播)
func (r *notificationRepository) FindForRecipient(recipientID string, page, pageSize int) ([]*model.NotificationModel, int64, error) {
	var notifications []*model.NotificationModel
	query := r.db.Model(&model.NotificationModel{}).
		Where("recipient_id = ? OR recipient_id = ''", recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, total, err
}

// CountByFile 统计某文件关联的通知数
func (r *notificationRepository) CountByFile(fileID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.NotificationModel{}).
		Where("property_file_id = ?", fileID).
		Count(&count).Error
	return count, err
}

// MarkRead 标记通知已读,仅限收件人本人
func (r *notificationRepository) MarkRead(id string, recipientID string) (int64, error) {
	now := time.Now()
	result := r.db.Model(&model.NotificationModel{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}

// Delete 删除通知,仅限收件人本人
func (r *notificationRepository) Delete(id string, recipientID string) (int64, error) {
	result := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&model.NotificationModel{})
	return result.RowsAffected, result.Error
}
