package model

import (
	"errors"
	"time"
)

// UserModel 用户数据模型
// position 为单一固定角色,账号之间互斥,不支持多角色
type UserModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	MobileNumber string    `gorm:"type:varchar(32)" json:"mobile_number"`
	Position     string    `gorm:"type:varchar(32);not null;index" json:"position"` // coordinator/validator/key-in/verification/admin
	Department   string    `gorm:"type:varchar(128)" json:"department"`
	EmployeeID   string    `gorm:"type:varchar(64);uniqueIndex" json:"employee_id"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // 永不序列化
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	LastLoginIP  string    `gorm:"type:varchar(45)" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.ID == "" {
		return errors.New("user ID is required")
	}
	if um.FullName == "" {
		return errors.New("full name is required")
	}
	if um.Email == "" {
		return errors.New("email is required")
	}
	if um.Position == "" {
		return errors.New("position is required")
	}
	return nil
}
