package model

import (
	"errors"
	"time"
)

// PropertyFileModel 产权文件数据模型
// Status 是状态机变量,只能通过工作流服务的条件更新修改
// PreviousStatus 记录挂起前的状态,resume 时恢复
type PropertyFileModel struct {
	ID                    string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	FileCode              string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"file_code"` // 人类可读文件编号,如 JA123456
	OwnerName             string     `gorm:"type:varchar(255);not null" json:"owner_name"`
	OwnerContact          string     `gorm:"type:varchar(64)" json:"owner_contact"`
	PropertyAddress       string     `gorm:"type:text;not null" json:"property_address"`
	BankID                string     `gorm:"type:varchar(64);index" json:"bank_id"`
	PropertyTypeID        string     `gorm:"type:varchar(64);index" json:"property_type_id"`
	LocationID            string     `gorm:"type:varchar(64);index" json:"location_id"`
	CoordinatorID         string     `gorm:"type:varchar(64);not null;index" json:"coordinator_id"`
	ValidatorID           string     `gorm:"type:varchar(64);index" json:"validator_id"`
	KeyInOperatorID       string     `gorm:"type:varchar(64);index" json:"key_in_operator_id"`
	VerificationOfficerID string     `gorm:"type:varchar(64);index" json:"verification_officer_id"`
	Status                string     `gorm:"type:varchar(32);not null;index" json:"status"`
	PreviousStatus        string     `gorm:"type:varchar(32)" json:"previous_status,omitempty"`
	VerificationNotes     string     `gorm:"type:text" json:"verification_notes,omitempty"`
	CreatedBy             string     `gorm:"type:varchar(64);not null" json:"created_by"`
	CreatedAt             time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"not null;index" json:"updated_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (PropertyFileModel) TableName() string {
	return "property_files"
}

// Validate 验证产权文件模型
func (pf *PropertyFileModel) Validate() error {
	if pf.ID == "" {
		return errors.New("file ID is required")
	}
	if pf.FileCode == "" {
		return errors.New("file code is required")
	}
	if pf.OwnerName == "" {
		return errors.New("owner name is required")
	}
	if pf.CoordinatorID == "" {
		return errors.New("coordinator ID is required")
	}
	if pf.Status == "" {
		return errors.New("status is required")
	}
	return nil
}
