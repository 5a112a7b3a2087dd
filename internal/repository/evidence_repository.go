package repository

import (
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// EvidenceRepository 勘验数据、录入数据与文档仓储接口
// 勘验数据和录入数据每文件至多一条,只在对应转换中创建
type EvidenceRepository interface {
	CreateValidationData(vd *model.ValidationDataModel) error
	CreateValidationPhoto(p *model.ValidationPhotoModel) error
	FindValidationByFile(fileID string) (*model.ValidationDataModel, error)
	FindPhotosByValidation(validationID string) ([]*model.ValidationPhotoModel, error)
	CreatePropertyData(pd *model.PropertyDataModel) error
	FindPropertyDataByFile(fileID string) (*model.PropertyDataModel, error)
	CreateDocument(d *model.DocumentModel) error
	FindDocumentsByFile(fileID string) ([]*model.DocumentModel, error)
}

// evidenceRepository 仓储实现
type evidenceRepository struct {
	db *gorm.DB
}

// NewEvidenceRepository 创建勘验数据仓储
func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

// CreateValidationData 创建勘验数据
func (r *evidenceRepository) CreateValidationData(vd *model.ValidationDataModel) error {
	return r.db.Create(vd).Error
}

// CreateValidationPhoto 创建勘验照片
func (r *evidenceRepository) CreateValidationPhoto(p *model.ValidationPhotoModel) error {
	return r.db.Create(p).Error
}

// FindValidationByFile 查找某文件的勘验数据
func (r *evidenceRepository) FindValidationByFile(fileID string) (*model.ValidationDataModel, error) {
	var vd model.ValidationDataModel
	if err := r.db.Where("property_file_id = ?", fileID).First(&vd).Error; err != nil {
		return nil, err
	}
	return &vd, nil
}

// FindPhotosByValidation 查找勘验照片
func (r *evidenceRepository) FindPhotosByValidation(validationID string) ([]*model.ValidationPhotoModel, error) {
	var photos []*model.ValidationPhotoModel
	err := r.db.Where("validation_data_id = ?", validationID).
		Order("created_at ASC").
		Find(&photos).Error
	return photos, err
}

// CreatePropertyData 创建录入数据
func (r *evidenceRepository) CreatePropertyData(pd *model.PropertyDataModel) error {
	return r.db.Create(pd).Error
}

// FindPropertyDataByFile 查找某文件的录入数据
func (r *evidenceRepository) FindPropertyDataByFile(fileID string) (*model.PropertyDataModel, error) {
	var pd model.PropertyDataModel
	if err := r.db.Where("property_file_id = ?", fileID).First(&pd).Error; err != nil {
		return nil, err
	}
	return &pd, nil
}

// CreateDocument 创建文档记录
func (r *evidenceRepository) CreateDocument(d *model.DocumentModel) error {
	return r.db.Create(d).Error
}

// FindDocumentsByFile 查找某文件的上传文档
func (r *evidenceRepository) FindDocumentsByFile(fileID string) ([]*model.DocumentModel, error) {
	var docs []*model.DocumentModel
	err := r.db.Where("property_file_id = ?", fileID).
		Order("created_at ASC").
		Find(&docs).Error
	return docs, err
}
