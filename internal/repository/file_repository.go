package repository

import (
	"errors"
	"time"

	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// FileRepository 产权文件仓储接口
// UpdateStatusIf 是工作流引擎的乐观并发原语:
// 仅当持久化状态等于期望的 from 状态时才写入新状态,返回受影响行数
type FileRepository interface {
	Create(file *model.PropertyFileModel) error
	FindByID(id string) (*model.PropertyFileModel, error)
	FindByCode(code string) (*model.PropertyFileModel, error)
	FindByFilter(filter *FileFilter) ([]*model.PropertyFileModel, int64, error)
	UpdateStatusIf(id string, from string, to string, extra map[string]interface{}) (int64, error)
	CountByStatus() (map[string]int64, error)
}

// FileFilter 产权文件查询过滤器
type FileFilter struct {
	Status                *string
	CoordinatorID         *string
	ValidatorID           *string
	KeyInOperatorID       *string
	VerificationOfficerID *string
	BankID                *string
	Search                *string // 匹配文件编号或业主姓名
	Page                  int
	PageSize              int
}

// fileRepository 产权文件仓储实现
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建产权文件仓储
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create 创建产权文件
func (r *fileRepository) Create(file *model.PropertyFileModel) error {
	return r.db.Create(file).Error
}

// FindByID 根据 ID 查找产权文件
func (r *fileRepository) FindByID(id string) (*model.PropertyFileModel, error) {
	var file model.PropertyFileModel
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByCode 根据文件编号查找产权文件
func (r *fileRepository) FindByCode(code string) (*model.PropertyFileModel, error) {
	var file model.PropertyFileModel
	if err := r.db.Where("file_code = ?", code).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByFilter 根据过滤器查找产权文件,返回当页数据和总数
func (r *fileRepository) FindByFilter(filter *FileFilter) ([]*model.PropertyFileModel, int64, error) {
	var files []*model.PropertyFileModel
	query := r.db.Model(&model.PropertyFileModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.CoordinatorID != nil {
			query = query.Where("coordinator_id = ?", *filter.CoordinatorID)
		}
		if filter.ValidatorID != nil {
			query = query.Where("validator_id = ?", *filter.ValidatorID)
		}
		if filter.KeyInOperatorID != nil {
			query = query.Where("key_in_operator_id = ?", *filter.KeyInOperatorID)
		}
		if filter.VerificationOfficerID != nil {
			query = query.Where("verification_officer_id = ?", *filter.VerificationOfficerID)
		}
		if filter.BankID != nil {
			query = query.Where("bank_id = ?", *filter.BankID)
		}
		if filter.Search != nil {
			pattern := "%" + *filter.Search + "%"
			query = query.Where("file_code LIKE ? OR owner_name LIKE ?", pattern, pattern)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter != nil && filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	err := query.Order("created_at DESC").Find(&files).Error
	return files, total, err
}

// UpdateStatusIf 条件状态更新
// WHERE id = ? AND status = ? 保证两个并发执行者只有一个成功,
// 失败方受影响行数为 0,由服务层映射为 ConcurrentModification
func (r *fileRepository) UpdateStatusIf(id string, from string, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := r.db.Model(&model.PropertyFileModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByStatus 按状态统计文件数
func (r *fileRepository) CountByStatus() (map[string]int64, error) {
	var results []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&model.PropertyFileModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
