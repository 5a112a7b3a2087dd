package repository

import (
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// MasterDataRepository 主数据仓储接口
// 银行、物业类型、地区和系统配置的 CRUD
type MasterDataRepository interface {
	ListBanks() ([]*model.BankModel, error)
	SaveBank(b *model.BankModel) error
	DeleteBank(id string) (int64, error)

	ListPropertyTypes() ([]*model.PropertyTypeModel, error)
	SavePropertyType(pt *model.PropertyTypeModel) error
	DeletePropertyType(id string) (int64, error)

	ListLocations() ([]*model.LocationModel, error)
	SaveLocation(l *model.LocationModel) error
	DeleteLocation(id string) (int64, error)

	ListConfigurations() ([]*model.SystemConfigurationModel, error)
	SaveConfiguration(c *model.SystemConfigurationModel) error
	DeleteConfiguration(id string) (int64, error)
}

// masterDataRepository 主数据仓储实现
type masterDataRepository struct {
	db *gorm.DB
}

// NewMasterDataRepository 创建主数据仓储
func NewMasterDataRepository(db *gorm.DB) MasterDataRepository {
	return &masterDataRepository{db: db}
}

// ListBanks 列出所有银行,按名称排序
func (r *masterDataRepository) ListBanks() ([]*model.BankModel, error) {
	var banks []*model.BankModel
	err := r.db.Order("name").Find(&banks).Error
	return banks, err
}

// SaveBank 保存银行
func (r *masterDataRepository) SaveBank(b *model.BankModel) error {
	return r.db.Save(b).Error
}

// DeleteBank 删除银行
func (r *masterDataRepository) DeleteBank(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.BankModel{})
	return result.RowsAffected, result.Error
}

// ListPropertyTypes 列出所有物业类型,按分类和名称排序
func (r *masterDataRepository) ListPropertyTypes() ([]*model.PropertyTypeModel, error) {
	var types []*model.PropertyTypeModel
	err := r.db.Order("category, name").Find(&types).Error
	return types, err
}

// SavePropertyType 保存物业类型
func (r *masterDataRepository) SavePropertyType(pt *model.PropertyTypeModel) error {
	return r.db.Save(pt).Error
}

// DeletePropertyType 删除物业类型
func (r *masterDataRepository) DeletePropertyType(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.PropertyTypeModel{})
	return result.RowsAffected, result.Error
}

// ListLocations 列出所有地区
func (r *masterDataRepository) ListLocations() ([]*model.LocationModel, error) {
	var locations []*model.LocationModel
	err := r.db.Order("state, district, city").Find(&locations).Error
	return locations, err
}

// SaveLocation 保存地区
func (r *masterDataRepository) SaveLocation(l *model.LocationModel) error {
	return r.db.Save(l).Error
}

// DeleteLocation 删除地区
func (r *masterDataRepository) DeleteLocation(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.LocationModel{})
	return result.RowsAffected, result.Error
}

// ListConfigurations 列出所有系统配置
func (r *masterDataRepository) ListConfigurations() ([]*model.SystemConfigurationModel, error) {
	var configs []*model.SystemConfigurationModel
	err := r.db.Order("config_type, key").Find(&configs).Error
	return configs, err
}

// SaveConfiguration 保存系统配置
func (r *masterDataRepository) SaveConfiguration(c *model.SystemConfigurationModel) error {
	return r.db.Save(c).Error
}

// DeleteConfiguration 删除系统配置
func (r *masterDataRepository) DeleteConfiguration(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.SystemConfigurationModel{})
	return result.RowsAffected, result.Error
}
