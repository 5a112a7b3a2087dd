package model

import (
	"errors"
	"time"
)

// StatusHistoryModel 状态变更历史数据模型
// 每次成功的状态转换写入一条,用于追溯文件走过的状态序列
type StatusHistoryModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PropertyFileID string    `gorm:"type:varchar(64);not null;index" json:"property_file_id"`
	FromStatus     string    `gorm:"type:varchar(32)" json:"from_status"`
	ToStatus       string    `gorm:"type:varchar(32);not null" json:"to_status"`
	Event          string    `gorm:"type:varchar(64);not null" json:"event"`
	Reason         string    `gorm:"type:text" json:"reason"`
	Operator       string    `gorm:"type:varchar(64);not null" json:"operator"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (StatusHistoryModel) TableName() string {
	return "status_history"
}

// Validate 验证状态历史模型
func (sh *StatusHistoryModel) Validate() error {
	if sh.ID == "" {
		return errors.New("history ID is required")
	}
	if sh.PropertyFileID == "" {
		return errors.New("property file ID is required")
	}
	if sh.ToStatus == "" {
		return errors.New("to status is required")
	}
	if sh.Operator == "" {
		return errors.New("operator is required")
	}
	return nil
}
