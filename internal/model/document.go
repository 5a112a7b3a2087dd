package model

import (
	"errors"
	"time"
)

// DocumentModel 上传文档数据模型
// FileURL 是对象存储返回的定位符,字节内容不入库
type DocumentModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PropertyFileID string    `gorm:"type:varchar(64);not null;index" json:"property_file_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	DocumentType   string    `gorm:"type:varchar(32);not null" json:"document_type"` // deed/survey/photo/other
	FileURL        string    `gorm:"type:text;not null" json:"file_url"`
	FileSize       int64     `json:"file_size"`
	MimeType       string    `gorm:"type:varchar(128)" json:"mime_type"`
	UploadedBy     string    `gorm:"type:varchar(64);not null" json:"uploaded_by"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (DocumentModel) TableName() string {
	return "documents"
}

// Validate 验证文档模型
func (dm *DocumentModel) Validate() error {
	if dm.ID == "" {
		return errors.New("document ID is required")
	}
	if dm.PropertyFileID == "" {
		return errors.New("property file ID is required")
	}
	if dm.Name == "" {
		return errors.New("document name is required")
	}
	if dm.FileURL == "" {
		return errors.New("file URL is required")
	}
	return nil
}
