package model

import (
	"errors"
	"time"
)

// PropertyDataModel 物业录入数据模型
// 每个产权文件至多一条,由指派的录入员在 submit_property_data 转换中创建
type PropertyDataModel struct {
	ID                    string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PropertyFileID        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"property_file_id"`
	Length                float64   `json:"length"`
	Width                 float64   `json:"width"`
	Area                  float64   `gorm:"not null" json:"area"`
	BuiltUpArea           float64   `json:"built_up_area"`
	CarpetArea            float64   `json:"carpet_area"`
	ConstructionType      string    `gorm:"type:varchar(128);not null" json:"construction_type"`
	ConstructionMaterial  string    `gorm:"type:varchar(128)" json:"construction_material"`
	ConstructionCondition string    `gorm:"type:varchar(128)" json:"construction_condition"`
	YearBuilt             int       `json:"year_built"`
	Floors                int       `json:"floors"`
	EstimatedValue        float64   `gorm:"not null" json:"estimated_value"`
	MarketRate            float64   `json:"market_rate"`
	GovernmentRate        float64   `json:"government_rate"`
	ValuationNotes        string    `gorm:"type:text" json:"valuation_notes"`
	DataSource            string    `gorm:"type:varchar(64)" json:"data_source"`
	FormatTemplateID      string    `gorm:"type:varchar(64)" json:"format_template_id"` // 自定义字段模板
	CustomData            []byte    `gorm:"type:jsonb" json:"custom_data,omitempty"`    // 按模板键入的自定义字段集
	EnteredBy             string    `gorm:"type:varchar(64);not null;index" json:"entered_by"`
	EntryDate             time.Time `gorm:"not null" json:"entry_date"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (PropertyDataModel) TableName() string {
	return "property_data"
}

// Validate 验证物业数据模型
func (pd *PropertyDataModel) Validate() error {
	if pd.ID == "" {
		return errors.New("property data ID is required")
	}
	if pd.PropertyFileID == "" {
		return errors.New("property file ID is required")
	}
	if pd.Area <= 0 {
		return errors.New("area is required")
	}
	if pd.ConstructionType == "" {
		return errors.New("construction type is required")
	}
	if pd.EstimatedValue <= 0 {
		return errors.New("estimated value is required")
	}
	if pd.EnteredBy == "" {
		return errors.New("entered by is required")
	}
	return nil
}
