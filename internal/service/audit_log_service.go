package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
)

// ClientMeta 请求方客户端元数据
// 由控制器从请求中提取,显式传入服务层
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AuditLogService 审计日志服务接口
// 每个改变状态的操作写入一条,只追加,查询只读
type AuditLogService interface {
	RecordAction(userID, actionType, modelName, objectID, objectRepr string, changes interface{}, meta ClientMeta) error
	FindByUser(userID string, limit int) ([]*model.AuditLogModel, error)
	FindByObject(modelName, objectID string) ([]*model.AuditLogModel, error)
	FindRecent(limit int) ([]*model.AuditLogModel, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	repo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(repo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{repo: repo}
}

// BuildAuditEntry 构造一条审计日志
// 供需要在事务内直接落库的调用方使用
func BuildAuditEntry(userID, actionType, modelName, objectID, objectRepr string, changes interface{}, meta ClientMeta) (*model.AuditLogModel, error) {
	var changesJSON []byte
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		changesJSON = data
	}

	return &model.AuditLogModel{
		ID:         uuid.New().String(),
		UserID:     userID,
		ActionType: actionType,
		ModelName:  modelName,
		ObjectID:   objectID,
		ObjectRepr: objectRepr,
		Changes:    changesJSON,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now(),
	}, nil
}

// RecordAction 记录一次操作
func (s *auditLogService) RecordAction(userID, actionType, modelName, objectID, objectRepr string, changes interface{}, meta ClientMeta) error {
	if s.repo == nil {
		return nil
	}
	entry, err := BuildAuditEntry(userID, actionType, modelName, objectID, objectRepr, changes, meta)
	if err != nil {
		return err
	}
	return s.repo.Append(entry)
}

// FindByUser 查询某用户的审计日志
func (s *auditLogService) FindByUser(userID string, limit int) ([]*model.AuditLogModel, error) {
	return s.repo.FindByUserID(userID, limit)
}

// FindByObject 查询某对象的审计日志
func (s *auditLogService) FindByObject(modelName, objectID string) ([]*model.AuditLogModel, error) {
	return s.repo.FindByObject(modelName, objectID)
}

// FindRecent 查询最近的审计日志
func (s *auditLogService) FindRecent(limit int) ([]*model.AuditLogModel, error) {
	return s.repo.FindRecent(limit)
}
