package model

import (
	"errors"
	"time"
)

// ValidationDataModel 实地勘验数据模型
// 每个产权文件至多一条,由指派的勘验员在 submit_validation 转换中创建
// 创建后作为证据记录不再修改
type ValidationDataModel struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PropertyFileID    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"property_file_id"`
	GPSLatitude       float64   `gorm:"type:decimal(10,7)" json:"gps_latitude"`
	GPSLongitude      float64   `gorm:"type:decimal(10,7)" json:"gps_longitude"`
	GPSAccuracy       float64   `json:"gps_accuracy"`
	PropertyCondition string    `gorm:"type:varchar(128)" json:"property_condition"`
	PropertyType      string    `gorm:"type:varchar(128);not null" json:"property_type"` // 现场确认的物业类型分类
	AccessNotes       string    `gorm:"type:text" json:"access_notes"`
	VisitDate         string    `gorm:"type:varchar(16);not null" json:"visit_date"`
	VisitTime         string    `gorm:"type:varchar(16)" json:"visit_time"`
	WeatherConditions string    `gorm:"type:varchar(64)" json:"weather_conditions"`
	ValidatedBy       string    `gorm:"type:varchar(64);not null;index" json:"validated_by"`
	ExtendedData      []byte    `gorm:"type:jsonb" json:"extended_data,omitempty"` // 开放式调查字段载荷
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (ValidationDataModel) TableName() string {
	return "validation_data"
}

// Validate 验证勘验数据模型
func (vd *ValidationDataModel) Validate() error {
	if vd.ID == "" {
		return errors.New("validation data ID is required")
	}
	if vd.PropertyFileID == "" {
		return errors.New("property file ID is required")
	}
	if vd.VisitDate == "" {
		return errors.New("visit date is required")
	}
	if vd.ValidatedBy == "" {
		return errors.New("validated by is required")
	}
	return nil
}

// ValidationPhotoModel 勘验照片数据模型
type ValidationPhotoModel struct {
	ID               string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ValidationDataID string    `gorm:"type:varchar(64);not null;index" json:"validation_data_id"`
	PhotoURL         string    `gorm:"type:text;not null" json:"photo_url"`
	PhotoType        string    `gorm:"type:varchar(32)" json:"photo_type"` // front/interior/boundary/other
	Caption          string    `gorm:"type:text" json:"caption"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (ValidationPhotoModel) TableName() string {
	return "validation_photos"
}
