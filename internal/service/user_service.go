package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number"`
	Position     string `json:"position" binding:"required"`
	Department   string `json:"department"`
	EmployeeID   string `json:"employee_id"`
	Password     string `json:"password" binding:"required,min=8"`
}

// UpdateUserRequest 更新用户请求
// 指针字段表示未提供则不改
type UpdateUserRequest struct {
	FullName     *string `json:"full_name"`
	MobileNumber *string `json:"mobile_number"`
	Position     *string `json:"position"`
	Department   *string `json:"department"`
	Password     *string `json:"password"`
	IsActive     *bool   `json:"is_active"`
}

// UserService 用户管理服务接口
// 创建、修改和停用仅限管理员,权限在路由层校验
type UserService interface {
	Create(req *CreateUserRequest, operatorID string, meta ClientMeta) (*model.UserModel, error)
	Get(id string) (*model.UserModel, error)
	List(filter *repository.UserFilter) ([]*model.UserModel, int64, error)
	ListByPosition(position string) ([]*model.UserModel, error)
	Update(id string, req *UpdateUserRequest, operatorID string, meta ClientMeta) (*model.UserModel, error)
	Deactivate(id string, operatorID string, meta ClientMeta) error
}

// userService 用户管理服务实现
type userService struct {
	users repository.UserRepository
	audit AuditLogService
}

// NewUserService 创建用户管理服务
func NewUserService(users repository.UserRepository, audit AuditLogService) UserService {
	return &userService{users: users, audit: audit}
}

// Create 创建用户
func (s *userService) Create(req *CreateUserRequest, operatorID string, meta ClientMeta) (*model.UserModel, error) {
	if !workflow.Role(req.Position).Valid() {
		return nil, workflow.NewTransitionError("position", fmt.Sprintf("unknown position %q", req.Position))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.UserModel{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Position:     req.Position,
		Department:   req.Department,
		EmployeeID:   req.EmployeeID,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, workflow.NewTransitionError("user", err.Error())
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_ = s.audit.RecordAction(operatorID, "create", "User", user.ID, user.Email, map[string]interface{}{
		"position": user.Position,
	}, meta)
	return user, nil
}

// Get 查询用户
func (s *userService) Get(id string) (*model.UserModel, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, workflow.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// List 查询用户列表
func (s *userService) List(filter *repository.UserFilter) ([]*model.UserModel, int64, error) {
	return s.users.FindByFilter(filter)
}

// ListByPosition 按角色查询活跃用户
// 统筹员建档时用于选择可指派的勘验员、录入员和审核员
func (s *userService) ListByPosition(position string) ([]*model.UserModel, error) {
	if !workflow.Role(position).Valid() {
		return nil, workflow.NewTransitionError("position", fmt.Sprintf("unknown position %q", position))
	}
	return s.users.FindActiveByPosition(position)
}

// Update 更新用户
func (s *userService) Update(id string, req *UpdateUserRequest, operatorID string, meta ClientMeta) (*model.UserModel, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, workflow.ErrNotFound)
		}
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.FullName != nil {
		user.FullName = *req.FullName
		changes["full_name"] = *req.FullName
	}
	if req.MobileNumber != nil {
		user.MobileNumber = *req.MobileNumber
	}
	if req.Position != nil {
		if !workflow.Role(*req.Position).Valid() {
			return nil, workflow.NewTransitionError("position", fmt.Sprintf("unknown position %q", *req.Position))
		}
		user.Position = *req.Position
		changes["position"] = *req.Position
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
		changes["password"] = "changed"
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	_ = s.audit.RecordAction(operatorID, "update", "User", user.ID, user.Email, changes, meta)
	return user, nil
}

// Deactivate 停用用户
// 软停用而非删除,历史文件上的指派关系保持可追溯
func (s *userService) Deactivate(id string, operatorID string, meta ClientMeta) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("user %s: %w", id, workflow.ErrNotFound)
		}
		return err
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	_ = s.audit.RecordAction(operatorID, "deactivate", "User", user.ID, user.Email, nil, meta)
	return nil
}
