package model

import (
	"errors"
	"time"
)

// NotificationModel 通知数据模型
// RecipientID 为空表示广播;通知不具有工作流权威性,仅作提醒
type NotificationModel struct {
	ID             string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RecipientID    string     `gorm:"type:varchar(64);index" json:"recipient_id"`
	SenderID       string     `gorm:"type:varchar(64)" json:"sender_id"`
	Type           string     `gorm:"type:varchar(32);not null" json:"type"` // info/success/warning/error
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	PropertyFileID string     `gorm:"type:varchar(64);index" json:"property_file_id"`
	ActionType     string     `gorm:"type:varchar(64)" json:"action_type"` // file_assigned/status_changed/...
	IsRead         bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (NotificationModel) TableName() string {
	return "notifications"
}

// Validate 验证通知模型
func (nm *NotificationModel) Validate() error {
	if nm.ID == "" {
		return errors.New("notification ID is required")
	}
	if nm.Type == "" {
		return errors.New("notification type is required")
	}
	if nm.Message == "" {
		return errors.New("notification message is required")
	}
	return nil
}
