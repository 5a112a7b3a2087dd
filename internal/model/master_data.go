package model

import (
	"errors"
	"time"
)

// BankModel 银行主数据
type BankModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Branch    string    `gorm:"type:varchar(255);not null" json:"branch"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (BankModel) TableName() string {
	return "banks"
}

// Validate 验证银行主数据
func (b *BankModel) Validate() error {
	if b.Name == "" {
		return errors.New("bank name is required")
	}
	if b.Branch == "" {
		return errors.New("bank branch is required")
	}
	return nil
}

// PropertyTypeModel 物业类型主数据
type PropertyTypeModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Category  string    `gorm:"type:varchar(128);not null;index" json:"category"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (PropertyTypeModel) TableName() string {
	return "property_types"
}

// Validate 验证物业类型主数据
func (pt *PropertyTypeModel) Validate() error {
	if pt.Category == "" {
		return errors.New("property type category is required")
	}
	if pt.Name == "" {
		return errors.New("property type name is required")
	}
	return nil
}

// LocationModel 地区主数据
type LocationModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	State     string    `gorm:"type:varchar(128);not null;index" json:"state"`
	District  string    `gorm:"type:varchar(128);not null" json:"district"`
	City      string    `gorm:"type:varchar(128);not null" json:"city"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (LocationModel) TableName() string {
	return "locations"
}

// Validate 验证地区主数据
func (l *LocationModel) Validate() error {
	if l.State == "" {
		return errors.New("state is required")
	}
	if l.District == "" {
		return errors.New("district is required")
	}
	if l.City == "" {
		return errors.New("city is required")
	}
	return nil
}

// SystemConfigurationModel 系统配置主数据
// Value 以 JSON 存储,由管理端解释
type SystemConfigurationModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ConfigType string    `gorm:"type:varchar(64);not null;index" json:"config_type"`
	Key        string    `gorm:"type:varchar(128);not null" json:"key"`
	Value      []byte    `gorm:"type:jsonb;not null" json:"value"`
	CreatedBy  string    `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (SystemConfigurationModel) TableName() string {
	return "system_configurations"
}

// Validate 验证系统配置
func (sc *SystemConfigurationModel) Validate() error {
	if sc.ConfigType == "" {
		return errors.New("config type is required")
	}
	if sc.Key == "" {
		return errors.New("config key is required")
	}
	if len(sc.Value) == 0 {
		return errors.New("config value is required")
	}
	return nil
}
