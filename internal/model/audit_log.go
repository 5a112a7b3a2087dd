package model

import (
	"errors"
	"time"
)

// AuditLogModel 审计日志数据模型
// 只追加,应用层永不修改或删除
type AuditLogModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID     string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ActionType string    `gorm:"type:varchar(64);not null;index" json:"action_type"` // create/update/delete/login/logout 及工作流事件
	ModelName  string    `gorm:"type:varchar(64);not null" json:"model_name"`        // PropertyFile/User/Bank/...
	ObjectID   string    `gorm:"type:varchar(64);not null;index" json:"object_id"`
	ObjectRepr string    `gorm:"type:varchar(255)" json:"object_repr"` // 人类可读表示
	Changes    []byte    `gorm:"type:jsonb" json:"changes,omitempty"`  // 变更前后内容
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address"`   // IPv4 或 IPv6
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate 验证审计日志模型
func (al *AuditLogModel) Validate() error {
	if al.ID == "" {
		return errors.New("audit log ID is required")
	}
	if al.UserID == "" {
		return errors.New("user ID is required")
	}
	if al.ActionType == "" {
		return errors.New("action type is required")
	}
	if al.ModelName == "" {
		return errors.New("model name is required")
	}
	if al.ObjectID == "" {
		return errors.New("object ID is required")
	}
	return nil
}
