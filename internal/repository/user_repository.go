package repository

import (
	"github.com/propflow/propertyflow/internal/model"
	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(user *model.UserModel) error
	FindByID(id string) (*model.UserModel, error)
	FindActiveByID(id string) (*model.UserModel, error)
	FindActiveByEmail(email string) (*model.UserModel, error)
	FindActiveByPosition(position string) ([]*model.UserModel, error)
	FindByFilter(filter *UserFilter) ([]*model.UserModel, int64, error)
	Update(user *model.UserModel) error
	Delete(id string) error
}

// UserFilter 用户查询过滤器
type UserFilter struct {
	Position *string
	Search   *string // 匹配姓名、邮箱或工号
	Page     int
	PageSize int
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(user *model.UserModel) error {
	return r.db.Create(user).Error
}

// FindByID 根据 ID 查找用户
func (r *userRepository) FindByID(id string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByID 根据 ID 查找活跃用户
func (r *userRepository) FindActiveByID(id string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByEmail 根据邮箱查找活跃用户
func (r *userRepository) FindActiveByEmail(email string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByPosition 按角色查找活跃用户
func (r *userRepository) FindActiveByPosition(position string) ([]*model.UserModel, error) {
	var users []*model.UserModel
	err := r.db.Where("position = ? AND is_active = ?", position, true).
		Order("full_name").
		Find(&users).Error
	return users, err
}

// FindByFilter 根据过滤器查找用户
func (r *userRepository) FindByFilter(filter *UserFilter) ([]*model.UserModel, int64, error) {
	var users []*model.UserModel
	query := r.db.Model(&model.UserModel{})

	if filter != nil {
		if filter.Position != nil {
			query = query.Where("position = ?", *filter.Position)
		}
		if filter.Search != nil {
			pattern := "%" + *filter.Search + "%"
			query = query.Where("full_name LIKE ? OR email LIKE ? OR employee_id LIKE ?", pattern, pattern, pattern)
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

	err := query.Order("created_at DESC").Find(&users).Error
	return users, total, err
}

// Update 更新用户
func (r *userRepository) Update(user *model.UserModel) error {
	return r.db.Save(user).Error
}

// Delete 删除用户
func (r *userRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.UserModel{}).Error
}
