package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// MasterDataService 主数据服务接口
// 列表读取对所有角色开放,增删改仅限管理员(路由层校验),每次变更审计
type MasterDataService interface {
	ListBanks() ([]*model.BankModel, error)
	SaveBank(b *model.BankModel, operatorID string, meta ClientMeta) (*model.BankModel, error)
	DeleteBank(id string, operatorID string, meta ClientMeta) error

	ListPropertyTypes() ([]*model.PropertyTypeModel, error)
	SavePropertyType(pt *model.PropertyTypeModel, operatorID string, meta ClientMeta) (*model.PropertyTypeModel, error)
	DeletePropertyType(id string, operatorID string, meta ClientMeta) error

	ListLocations() ([]*model.LocationModel, error)
	SaveLocation(l *model.LocationModel, operatorID string, meta ClientMeta) (*model.LocationModel, error)
	DeleteLocation(id string, operatorID string, meta ClientMeta) error

	ListConfigurations() ([]*model.SystemConfigurationModel, error)
	SaveConfiguration(c *model.SystemConfigurationModel, operatorID string, meta ClientMeta) (*model.SystemConfigurationModel, error)
	DeleteConfiguration(id string, operatorID string, meta ClientMeta) error
}

// masterDataService 主数据服务实现
type masterDataService struct {
	repo  repository.MasterDataRepository
	audit AuditLogService
}

// NewMasterDataService 创建主数据服务
func NewMasterDataService(repo repository.MasterDataRepository, audit AuditLogService) MasterDataService {
	return &masterDataService{repo: repo, audit: audit}
}

// ListBanks 列出银行
func (s *masterDataService) ListBanks() ([]*model.BankModel, error) {
	return s.repo.ListBanks()
}

// SaveBank 新建或更新银行
func (s *masterDataService) SaveBank(b *model.BankModel, operatorID string, meta ClientMeta) (*model.BankModel, error) {
	if err := b.Validate(); err != nil {
		return nil, workflow.NewTransitionError("bank", err.Error())
	}
	action := stampMasterData(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err := s.repo.SaveBank(b); err != nil {
		return nil, fmt.Errorf("failed to save bank: %w", err)
	}
	_ = s.audit.RecordAction(operatorID, action, "Bank", b.ID, b.Name, nil, meta)
	return b, nil
}

// DeleteBank 删除银行
func (s *masterDataService) DeleteBank(id string, operatorID string, meta ClientMeta) error {
	rows, err := s.repo.DeleteBank(id)
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bank %s: %w", id, workflow.ErrNotFound)
	}
	_ = s.audit.RecordAction(operatorID, "delete", "Bank", id, "", nil, meta)
	return nil
}

// ListPropertyTypes 列出物业类型
func (s *masterDataService) ListPropertyTypes() ([]*model.PropertyTypeModel, error) {
	return s.repo.ListPropertyTypes()
}

// SavePropertyType 新建或更新物业类型
func (s *masterDataService) SavePropertyType(pt *model.PropertyTypeModel, operatorID string, meta ClientMeta) (*model.PropertyTypeModel, error) {
	if err := pt.Validate(); err != nil {
		return nil, workflow.NewTransitionError("property_type", err.Error())
	}
	action := stampMasterData(&pt.ID, &pt.CreatedAt, &pt.UpdatedAt)
	if err := s.repo.SavePropertyType(pt); err != nil {
		return nil, fmt.Errorf("failed to save property type: %w", err)
	}
	_ = s.audit.RecordAction(operatorID, action, "PropertyType", pt.ID, pt.Name, nil, meta)
	return pt, nil
}

// DeletePropertyType 删除物业类型
func (s *masterDataService) DeletePropertyType(id string, operatorID string, meta ClientMeta) error {
	rows, err := s.repo.DeletePropertyType(id)
	if err != nil {
		return fmt.Errorf("failed to delete property type: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property type %s: %w", id, workflow.ErrNotFound)
	}
	_ = s.audit.RecordAction(operatorID, "delete", "PropertyType", id, "", nil, meta)
	return nil
}

// ListLocations 列出地区
func (s *masterDataService) ListLocations() ([]*model.LocationModel, error) {
	return s.repo.ListLocations()
}

// SaveLocation 新建或更新地区
func (s *masterDataService) SaveLocation(l *model.LocationModel, operatorID string, meta ClientMeta) (*model.LocationModel, error) {
	if err := l.Validate(); err != nil {
		return nil, workflow.NewTransitionError("location", err.Error())
	}
	action := stampMasterData(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err := s.repo.SaveLocation(l); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}
	_ = s.audit.RecordAction(operatorID, action, "Location", l.ID, l.City, nil, meta)
	return l, nil
}

// DeleteLocation 删除地区
func (s *masterDataService) DeleteLocation(id string, operatorID string, meta ClientMeta) error {
	rows, err := s.repo.DeleteLocation(id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("location %s: %w", id, workflow.ErrNotFound)
	}
	_ = s.audit.RecordAction(operatorID, "delete", "Location", id, "", nil, meta)
	return nil
}

// ListConfigurations 列出系统配置
func (s *masterDataService) ListConfigurations() ([]*model.SystemConfigurationModel, error) {
	return s.repo.ListConfigurations()
}

// SaveConfiguration 新建或更新系统配置
func (s *masterDataService) SaveConfiguration(c *model.SystemConfigurationModel, operatorID string, meta ClientMeta) (*model.SystemConfigurationModel, error) {
	if err := c.Validate(); err != nil {
		return nil, workflow.NewTransitionError("configuration", err.Error())
	}
	action := stampMasterData(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if c.CreatedBy == "" {
		c.CreatedBy = operatorID
	}
	if err := s.repo.SaveConfiguration(c); err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}
	_ = s.audit.RecordAction(operatorID, action, "SystemConfiguration", c.ID, c.Key, nil, meta)
	return c, nil
}

// DeleteConfiguration 删除系统配置
func (s *masterDataService) DeleteConfiguration(id string, operatorID string, meta ClientMeta) error {
	rows, err := s.repo.DeleteConfiguration(id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("configuration %s: %w", id, workflow.ErrNotFound)
	}
	_ = s.audit.RecordAction(operatorID, "delete", "SystemConfiguration", id, "", nil, meta)
	return nil
}

// stampMasterData 补全主数据记录的 ID 和时间戳,返回审计动作名
func stampMasterData(id *string, createdAt, updatedAt *time.Time) string {
	now := time.Now()
	*updatedAt = now
	if *id == "" {
		*id = uuid.New().String()
		*createdAt = now
		return "create"
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	return "update"
}
