package service

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/metrics"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// fileCodePrefix 文件编号前缀
const fileCodePrefix = "JA"

// CreateFileRequest 创建产权文件请求
// 创建即指派,初始状态直接进入 validation
type CreateFileRequest struct {
	OwnerName             string          `json:"owner_name" binding:"required"`
	OwnerContact          string          `json:"owner_contact"`
	PropertyAddress       string          `json:"property_address" binding:"required"`
	BankID                string          `json:"bank_id"`
	PropertyTypeID        string          `json:"property_type_id"`
	LocationID            string          `json:"location_id"`
	ValidatorID           string          `json:"validator_id" binding:"required"`
	KeyInOperatorID       string          `json:"key_in_operator_id"`
	VerificationOfficerID string          `json:"verification_officer_id"`
	Documents             []DocumentInput `json:"documents"`
}

// DocumentInput 随文件提交的已上传文档元数据
// 文件字节已经写入对象存储,这里只登记定位符
type DocumentInput struct {
	Name         string `json:"name" binding:"required"`
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url" binding:"required"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}

// PhotoInput 勘验照片元数据
type PhotoInput struct {
	PhotoURL  string `json:"photo_url" binding:"required"`
	PhotoType string `json:"photo_type"`
	Caption   string `json:"caption"`
}

// SubmitValidationRequest 提交实地勘验证据请求
type SubmitValidationRequest struct {
	GPSLatitude       float64         `json:"gps_latitude"`
	GPSLongitude      float64         `json:"gps_longitude"`
	GPSAccuracy       float64         `json:"gps_accuracy"`
	PropertyCondition string          `json:"property_condition"`
	PropertyType      string          `json:"property_type"`
	AccessNotes       string          `json:"access_notes"`
	VisitDate         string          `json:"visit_date"`
	VisitTime         string          `json:"visit_time"`
	WeatherConditions string          `json:"weather_conditions"`
	Photos            []PhotoInput    `json:"photos"`
	ExtendedData      json.RawMessage `json:"extended_data"`
}

// SubmitPropertyDataRequest 提交物业录入数据请求
type SubmitPropertyDataRequest struct {
	Length                float64         `json:"length"`
	Width                 float64         `json:"width"`
	Area                  float64         `json:"area"`
	BuiltUpArea           float64         `json:"built_up_area"`
	CarpetArea            float64         `json:"carpet_area"`
	ConstructionType      string          `json:"construction_type"`
	ConstructionMaterial  string          `json:"construction_material"`
	ConstructionCondition string          `json:"construction_condition"`
	YearBuilt             int             `json:"year_built"`
	Floors                int             `json:"floors"`
	EstimatedValue        float64         `json:"estimated_value"`
	MarketRate            float64         `json:"market_rate"`
	GovernmentRate        float64         `json:"government_rate"`
	ValuationNotes        string          `json:"valuation_notes"`
	DataSource            string          `json:"data_source"`
	FormatTemplateID      string          `json:"format_template_id"`
	CustomData            json.RawMessage `json:"custom_data"`
}

// TransitionOutcome 一次成功转换的结果
// Warning 承载不影响转换本身的非致命问题(如通知派发失败)
type TransitionOutcome struct {
	FileID     string `json:"file_id"`
	FileCode   string `json:"file_code"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Warning    string `json:"warning,omitempty"`
}

// FileDetail 产权文件详情聚合
type FileDetail struct {
	File           *model.PropertyFileModel    `json:"file"`
	ValidationData *model.ValidationDataModel  `json:"validation_data,omitempty"`
	Photos         []*model.ValidationPhotoModel `json:"photos,omitempty"`
	PropertyData   *model.PropertyDataModel    `json:"property_data,omitempty"`
	Documents      []*model.DocumentModel      `json:"documents,omitempty"`
	History        []*model.StatusHistoryModel `json:"history"`
}

// FileService 产权文件工作流服务接口
// 每个转换方法是一个事务: 状态机守卫 + 载荷写入 + 条件状态更新
// + 状态历史 + 审计日志;通知派发在提交后异步进行
type FileService interface {
	Create(actor workflow.Actor, req *CreateFileRequest, meta ClientMeta) (*model.PropertyFileModel, string, error)
	Get(id string, actor workflow.Actor) (*FileDetail, error)
	List(actor workflow.Actor, filter *repository.FileFilter) ([]*model.PropertyFileModel, int64, error)
	SubmitValidation(id string, actor workflow.Actor, req *SubmitValidationRequest, meta ClientMeta) (*TransitionOutcome, error)
	SubmitPropertyData(id string, actor workflow.Actor, req *SubmitPropertyDataRequest, meta ClientMeta) (*TransitionOutcome, error)
	Approve(id string, actor workflow.Actor, notes string, meta ClientMeta) (*TransitionOutcome, error)
	Reject(id string, actor workflow.Actor, notes string, meta ClientMeta) (*TransitionOutcome, error)
	MarkPrinted(id string, actor workflow.Actor, meta ClientMeta) (*TransitionOutcome, error)
	Hold(id string, actor workflow.Actor, reason string, meta ClientMeta) (*TransitionOutcome, error)
	Resume(id string, actor workflow.Actor, meta ClientMeta) (*TransitionOutcome, error)
	Cancel(id string, actor workflow.Actor, reason string, meta ClientMeta) (*TransitionOutcome, error)
	AttachDocument(id string, actor workflow.Actor, doc *DocumentInput, meta ClientMeta) (*model.DocumentModel, error)
}

// fileService 产权文件工作流服务实现
type fileService struct {
	db         *gorm.DB
	machine    *workflow.Machine
	dispatcher *Dispatcher
}

// NewFileService 创建产权文件服务
func NewFileService(db *gorm.DB, machine *workflow.Machine, dispatcher *Dispatcher) FileService {
	return &fileService{
		db:         db,
		machine:    machine,
		dispatcher: dispatcher,
	}
}

// snapshot 从持久化记录构造状态机快照
func snapshot(f *model.PropertyFileModel) workflow.Snapshot {
	return workflow.Snapshot{
		Status:                workflow.Status(f.Status),
		PreviousStatus:        workflow.Status(f.PreviousStatus),
		CoordinatorID:         f.CoordinatorID,
		ValidatorID:           f.ValidatorID,
		KeyInOperatorID:       f.KeyInOperatorID,
		VerificationOfficerID: f.VerificationOfficerID,
	}
}

// generateFileCode 生成人类可读文件编号
// 前缀 + 6 位随机数字,冲突时重试
func (s *fileService) generateFileCode(files repository.FileRepository) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", fmt.Errorf("failed to generate file code: %w", err)
		}
		code := fmt.Sprintf("%s%06d", fileCodePrefix, n.Int64())
		if _, err := files.FindByCode(code); err != nil {
			if repository.IsNotFound(err) {
				return code, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("failed to allocate a unique file code")
}

// Create 创建产权文件
// 只有统筹员和管理员可以创建;创建即指派勘验员,状态直接进入 validation
func (s *fileService) Create(actor workflow.Actor, req *CreateFileRequest, meta ClientMeta) (*model.PropertyFileModel, string, error) {
	if actor.ID == "" {
		return nil, "", workflow.ErrUnauthenticated
	}
	if actor.Role != workflow.RoleCoordinator && actor.Role != workflow.RoleAdmin {
		return nil, "", &workflow.ForbiddenError{Reason: fmt.Sprintf("role %q may not create property files", actor.Role)}
	}

	now := time.Now()
	file := &model.PropertyFileModel{
		ID:                    uuid.New().String(),
		OwnerName:             req.OwnerName,
		OwnerContact:          req.OwnerContact,
		PropertyAddress:       req.PropertyAddress,
		BankID:                req.BankID,
		PropertyTypeID:        req.PropertyTypeID,
		LocationID:            req.LocationID,
		CoordinatorID:         actor.ID,
		ValidatorID:           req.ValidatorID,
		KeyInOperatorID:       req.KeyInOperatorID,
		VerificationOfficerID: req.VerificationOfficerID,
		Status:                string(workflow.StatusValidation),
		CreatedBy:             actor.ID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		files := repository.NewFileRepository(tx)

		code, err := s.generateFileCode(files)
		if err != nil {
			return err
		}
		file.FileCode = code

		if err := file.Validate(); err != nil {
			return workflow.NewTransitionError("file", err.Error())
		}
		if err := files.Create(file); err != nil {
			return fmt.Errorf("failed to create property file: %w", err)
		}

		evidence := repository.NewEvidenceRepository(tx)
		for _, d := range req.Documents {
			doc := &model.DocumentModel{
				ID:             uuid.New().String(),
				PropertyFileID: file.ID,
				Name:           d.Name,
				DocumentType:   d.DocumentType,
				FileURL:        d.FileURL,
				FileSize:       d.FileSize,
				MimeType:       d.MimeType,
				UploadedBy:     actor.ID,
				CreatedAt:      now,
			}
			if err := evidence.CreateDocument(doc); err != nil {
				return fmt.Errorf("failed to record document: %w", err)
			}
		}

		history := repository.NewStatusHistoryRepository(tx)
		if err := history.Append(&model.StatusHistoryModel{
			ID:             uuid.New().String(),
			PropertyFileID: file.ID,
			FromStatus:     "",
			ToStatus:       file.Status,
			Event:          "create",
			Operator:       actor.ID,
			CreatedAt:      now,
		}); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}

		return s.appendAudit(tx, actor.ID, "create", file, map[string]interface{}{
			"file_code": file.FileCode,
			"status":    file.Status,
		}, meta)
	})
	if err != nil {
		return nil, "", err
	}

	metrics.RecordFileCreated()
	logrus.WithFields(logrus.Fields{
		"file_id":   file.ID,
		"file_code": file.FileCode,
		"creator":   actor.ID,
	}).Info("Property file created")

	warning := s.notify(&model.NotificationModel{
		RecipientID:    file.ValidatorID,
		SenderID:       actor.ID,
		Type:           "info",
		Title:          "New file assigned for validation",
		Message:        fmt.Sprintf("Property file %s has been assigned to you for site validation", file.FileCode),
		PropertyFileID: file.ID,
		ActionType:     "file_assigned",
	})
	return file, warning, nil
}

// Get 查询产权文件详情
// 非管理员只能看到与自己相关的文件
func (s *fileService) Get(id string, actor workflow.Actor) (*FileDetail, error) {
	files := repository.NewFileRepository(s.db)
	file, err := files.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("property file %s: %w", id, workflow.ErrNotFound)
		}
		return nil, err
	}
	if !s.visible(file, actor) {
		return nil, &workflow.ForbiddenError{Reason: "file is not assigned to you"}
	}

	detail := &FileDetail{File: file}

	evidence := repository.NewEvidenceRepository(s.db)
	if vd, err := evidence.FindValidationByFile(id); err == nil {
		detail.ValidationData = vd
		if photos, perr := evidence.FindPhotosByValidation(vd.ID); perr == nil {
			detail.Photos = photos
		}
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	if pd, err := evidence.FindPropertyDataByFile(id); err == nil {
		detail.PropertyData = pd
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	docs, err := evidence.FindDocumentsByFile(id)
	if err != nil {
		return nil, err
	}
	detail.Documents = docs

	history := repository.NewStatusHistoryRepository(s.db)
	detail.History, err = history.FindByFile(id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List 按角色可见范围查询产权文件
func (s *fileService) List(actor workflow.Actor, filter *repository.FileFilter) ([]*model.PropertyFileModel, int64, error) {
	if actor.ID == "" {
		return nil, 0, workflow.ErrUnauthenticated
	}
	if filter == nil {
		filter = &repository.FileFilter{}
	}

	// 非管理员强制按自己的角色字段过滤
	switch actor.Role {
	case workflow.RoleCoordinator:
		filter.CoordinatorID = &actor.ID
	case workflow.RoleValidator:
		filter.ValidatorID = &actor.ID
	case workflow.RoleKeyIn:
		filter.KeyInOperatorID = &actor.ID
	case workflow.RoleVerification:
		filter.VerificationOfficerID = &actor.ID
	case workflow.RoleAdmin:
		// 全量可见
	default:
		return nil, 0, &workflow.ForbiddenError{Reason: fmt.Sprintf("unknown role %q", actor.Role)}
	}

	return repository.NewFileRepository(s.db).FindByFilter(filter)
}

// visible 判断文件是否在 actor 可见范围内
func (s *fileService) visible(file *model.PropertyFileModel, actor workflow.Actor) bool {
	switch actor.Role {
	case workflow.RoleAdmin:
		return true
	case workflow.RoleCoordinator:
		return file.CoordinatorID == actor.ID
	case workflow.RoleValidator:
		return file.ValidatorID == actor.ID
	case workflow.RoleKeyIn:
		return file.KeyInOperatorID == actor.ID
	case workflow.RoleVerification:
		return file.VerificationOfficerID == actor.ID
	}
	return false
}

// SubmitValidation 提交实地勘验证据,validation -> data-entry
func (s *fileService) SubmitValidation(id string, actor workflow.Actor, req *SubmitValidationRequest, meta ClientMeta) (*TransitionOutcome, error) {
	evidence := workflow.Evidence{
		PhotoCount:   len(req.Photos),
		VisitDate:    req.VisitDate,
		PropertyType: req.PropertyType,
	}

	return s.transition(id, actor, workflow.EventSubmitValidation, "", meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			if err := workflow.ValidateEvidence(evidence); err != nil {
				return nil, err
			}

			repo := repository.NewEvidenceRepository(tx)
			now := time.Now()
			vd := &model.ValidationDataModel{
				ID:                uuid.New().String(),
				PropertyFileID:    file.ID,
				GPSLatitude:       req.GPSLatitude,
				GPSLongitude:      req.GPSLongitude,
				GPSAccuracy:       req.GPSAccuracy,
				PropertyCondition: req.PropertyCondition,
				PropertyType:      req.PropertyType,
				AccessNotes:       req.AccessNotes,
				VisitDate:         req.VisitDate,
				VisitTime:         req.VisitTime,
				WeatherConditions: req.WeatherConditions,
				ValidatedBy:       actor.ID,
				ExtendedData:      req.ExtendedData,
				CreatedAt:         now,
			}
			if err := repo.CreateValidationData(vd); err != nil {
				return nil, fmt.Errorf("failed to record validation data: %w", err)
			}
			for _, p := range req.Photos {
				photo := &model.ValidationPhotoModel{
					ID:               uuid.New().String(),
					ValidationDataID: vd.ID,
					PhotoURL:         p.PhotoURL,
					PhotoType:        p.PhotoType,
					Caption:          p.Caption,
					CreatedAt:        now,
				}
				if err := repo.CreateValidationPhoto(photo); err != nil {
					return nil, fmt.Errorf("failed to record validation photo: %w", err)
				}
			}
			return nil, nil
		},
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.KeyInOperatorID,
				SenderID:       actor.ID,
				Type:           "info",
				Title:          "File ready for data entry",
				Message:        fmt.Sprintf("Site validation for file %s is complete, measurements can now be entered", file.FileCode),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// SubmitPropertyData 提交物业录入数据,data-entry -> verification
func (s *fileService) SubmitPropertyData(id string, actor workflow.Actor, req *SubmitPropertyDataRequest, meta ClientMeta) (*TransitionOutcome, error) {
	measurements := workflow.Measurements{
		Area:             req.Area,
		ConstructionType: req.ConstructionType,
		EstimatedValue:   req.EstimatedValue,
	}

	return s.transition(id, actor, workflow.EventSubmitPropertyData, "", meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			if err := workflow.ValidateMeasurements(measurements); err != nil {
				return nil, err
			}

			repo := repository.NewEvidenceRepository(tx)
			now := time.Now()

			// 拒绝后重新提交时旧记录仍在,先清掉再建,保持每文件至多一条
			if old, err := repo.FindPropertyDataByFile(file.ID); err == nil {
				if err := tx.Delete(old).Error; err != nil {
					return nil, fmt.Errorf("failed to replace property data: %w", err)
				}
			} else if !repository.IsNotFound(err) {
				return nil, err
			}

			pd := &model.PropertyDataModel{
				ID:                    uuid.New().String(),
				PropertyFileID:        file.ID,
				Length:                req.Length,
				Width:                 req.Width,
				Area:                  req.Area,
				BuiltUpArea:           req.BuiltUpArea,
				CarpetArea:            req.CarpetArea,
				ConstructionType:      req.ConstructionType,
				ConstructionMaterial:  req.ConstructionMaterial,
				ConstructionCondition: req.ConstructionCondition,
				YearBuilt:             req.YearBuilt,
				Floors:                req.Floors,
				EstimatedValue:        req.EstimatedValue,
				MarketRate:            req.MarketRate,
				GovernmentRate:        req.GovernmentRate,
				ValuationNotes:        req.ValuationNotes,
				DataSource:            req.DataSource,
				FormatTemplateID:      req.FormatTemplateID,
				CustomData:            req.CustomData,
				EnteredBy:             actor.ID,
				EntryDate:             now,
				CreatedAt:             now,
			}
			if err := repo.CreatePropertyData(pd); err != nil {
				return nil, fmt.Errorf("failed to record property data: %w", err)
			}
			return nil, nil
		},
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.VerificationOfficerID,
				SenderID:       actor.ID,
				Type:           "info",
				Title:          "File ready for verification",
				Message:        fmt.Sprintf("Property data for file %s has been entered and awaits verification", file.FileCode),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// Approve 审核通过,verification -> ready-to-print
func (s *fileService) Approve(id string, actor workflow.Actor, notes string, meta ClientMeta) (*TransitionOutcome, error) {
	return s.transition(id, actor, workflow.EventApprove, notes, meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			extra := map[string]interface{}{}
			if notes != "" {
				extra["verification_notes"] = notes
			}
			return extra, nil
		},
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.CoordinatorID,
				SenderID:       actor.ID,
				Type:           "success",
				Title:          "File approved",
				Message:        fmt.Sprintf("File %s has been verified and is ready to print", file.FileCode),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// Reject 审核拒绝,verification -> data-entry
// 拒绝必须附说明,录入员据此修正后可重新提交
func (s *fileService) Reject(id string, actor workflow.Actor, notes string, meta ClientMeta) (*TransitionOutcome, error) {
	if notes == "" {
		return nil, workflow.NewTransitionError("verification_notes", "rejection requires an explanation")
	}
	return s.transition(id, actor, workflow.EventReject, notes, meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			return map[string]interface{}{"verification_notes": notes}, nil
		},
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.KeyInOperatorID,
				SenderID:       actor.ID,
				Type:           "warning",
				Title:          "File rejected",
				Message:        fmt.Sprintf("File %s was rejected during verification: %s", file.FileCode, notes),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// MarkPrinted 标记打印完成,ready-to-print -> completed
func (s *fileService) MarkPrinted(id string, actor workflow.Actor, meta ClientMeta) (*TransitionOutcome, error) {
	return s.transition(id, actor, workflow.EventMarkPrinted, "", meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			now := time.Now()
			return map[string]interface{}{"completed_at": &now}, nil
		},
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.CoordinatorID,
				SenderID:       actor.ID,
				Type:           "success",
				Title:          "File completed",
				Message:        fmt.Sprintf("File %s has been printed and the workflow is complete", file.FileCode),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// Hold 挂起文件,记录挂起前状态供 resume 恢复
func (s *fileService) Hold(id string, actor workflow.Actor, reason string, meta ClientMeta) (*TransitionOutcome, error) {
	return s.transition(id, actor, workflow.EventHold, reason, meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			return map[string]interface{}{"previous_status": file.Status}, nil
		},
		nil)
}

// Resume 恢复挂起的文件到挂起前的状态
func (s *fileService) Resume(id string, actor workflow.Actor, meta ClientMeta) (*TransitionOutcome, error) {
	return s.transition(id, actor, workflow.EventResume, "", meta,
		func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error) {
			return map[string]interface{}{"previous_status": ""}, nil
		},
		nil)
}

// Cancel 取消文件,终态,仅管理员
func (s *fileService) Cancel(id string, actor workflow.Actor, reason string, meta ClientMeta) (*TransitionOutcome, error) {
	return s.transition(id, actor, workflow.EventCancel, reason, meta, nil,
		func(file *model.PropertyFileModel) *model.NotificationModel {
			return &model.NotificationModel{
				RecipientID:    file.CoordinatorID,
				SenderID:       actor.ID,
				Type:           "error",
				Title:          "File cancelled",
				Message:        fmt.Sprintf("File %s has been cancelled: %s", file.FileCode, reason),
				PropertyFileID: file.ID,
				ActionType:     "status_changed",
			}
		})
}

// AttachDocument 为文件补充上传文档
func (s *fileService) AttachDocument(id string, actor workflow.Actor, doc *DocumentInput, meta ClientMeta) (*model.DocumentModel, error) {
	files := repository.NewFileRepository(s.db)
	file, err := files.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("property file %s: %w", id, workflow.ErrNotFound)
		}
		return nil, err
	}
	if !s.visible(file, actor) {
		return nil, &workflow.ForbiddenError{Reason: "file is not assigned to you"}
	}
	if workflow.Status(file.Status).Terminal() {
		return nil, workflow.NewTransitionError("", fmt.Sprintf("file is %s and accepts no further documents", file.Status))
	}

	record := &model.DocumentModel{
		ID:             uuid.New().String(),
		PropertyFileID: file.ID,
		Name:           doc.Name,
		DocumentType:   doc.DocumentType,
		FileURL:        doc.FileURL,
		FileSize:       doc.FileSize,
		MimeType:       doc.MimeType,
		UploadedBy:     actor.ID,
		CreatedAt:      time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewEvidenceRepository(tx).CreateDocument(record); err != nil {
			return fmt.Errorf("failed to record document: %w", err)
		}
		return s.appendAudit(tx, actor.ID, "upload_document", file, map[string]interface{}{
			"document": doc.Name,
		}, meta)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// prepareFunc 在状态机守卫通过之后、条件更新之前执行的载荷写入
// 返回的 extra 列与状态更新同一条 UPDATE 写入
type prepareFunc func(tx *gorm.DB, file *model.PropertyFileModel) (map[string]interface{}, error)

// notifyFunc 构造转换成功后要派发的通知
type notifyFunc func(file *model.PropertyFileModel) *model.NotificationModel

// transition 工作流转换的统一骨架
// 事务内: 读文件 -> 状态机决策 -> 载荷写入 -> 条件状态更新
// (受影响行数为 0 则判定并发冲突并回滚) -> 状态历史 -> 审计日志
// 提交后: 通知派发(失败只作为警告返回)与指标上报
func (s *fileService) transition(id string, actor workflow.Actor, event workflow.Event, reason string, meta ClientMeta, prepare prepareFunc, notify notifyFunc) (*TransitionOutcome, error) {
	var outcome *TransitionOutcome
	var updated *model.PropertyFileModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		files := repository.NewFileRepository(tx)
		file, err := files.FindByID(id)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("property file %s: %w", id, workflow.ErrNotFound)
			}
			return err
		}

		snap := snapshot(file)
		target, err := s.machine.Next(snap, event, actor)
		if err != nil {
			return err
		}

		extra := map[string]interface{}{}
		if prepare != nil {
			extra, err = prepare(tx, file)
			if err != nil {
				return err
			}
			if extra == nil {
				extra = map[string]interface{}{}
			}
		}

		rows, err := files.UpdateStatusIf(file.ID, file.Status, string(target), extra)
		if err != nil {
			return fmt.Errorf("failed to update file status: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("file %s was modified concurrently: %w", file.FileCode, workflow.ErrConcurrentModification)
		}

		now := time.Now()
		history := repository.NewStatusHistoryRepository(tx)
		if err := history.Append(&model.StatusHistoryModel{
			ID:             uuid.New().String(),
			PropertyFileID: file.ID,
			FromStatus:     file.Status,
			ToStatus:       string(target),
			Event:          string(event),
			Reason:         reason,
			Operator:       actor.ID,
			CreatedAt:      now,
		}); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}

		if err := s.appendAudit(tx, actor.ID, string(event), file, map[string]interface{}{
			"from_status": file.Status,
			"to_status":   string(target),
			"reason":      reason,
		}, meta); err != nil {
			return err
		}

		updated = file
		outcome = &TransitionOutcome{
			FileID:     file.ID,
			FileCode:   file.FileCode,
			FromStatus: file.Status,
			ToStatus:   string(target),
		}
		return nil
	})
	if err != nil {
		metrics.RecordTransition(string(event), transitionResult(err))
		return nil, err
	}

	metrics.RecordTransition(string(event), "success")
	logrus.WithFields(logrus.Fields{
		"file_id":   outcome.FileID,
		"file_code": outcome.FileCode,
		"event":     string(event),
		"from":      outcome.FromStatus,
		"to":        outcome.ToStatus,
		"actor":     actor.ID,
	}).Info("Workflow transition applied")

	if notify != nil {
		if n := notify(updated); n != nil && n.RecipientID != "" {
			outcome.Warning = s.notify(n)
		}
	}
	return outcome, nil
}

// appendAudit 在事务内写入审计日志
func (s *fileService) appendAudit(tx *gorm.DB, userID, actionType string, file *model.PropertyFileModel, changes map[string]interface{}, meta ClientMeta) error {
	entry, err := BuildAuditEntry(userID, actionType, "PropertyFile", file.ID, file.FileCode, changes, meta)
	if err != nil {
		return err
	}
	if err := repository.NewAuditLogRepository(tx).Append(entry); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

// notify 派发通知,失败不影响已提交的转换,返回警告文本
func (s *fileService) notify(n *model.NotificationModel) string {
	if s.dispatcher == nil {
		return ""
	}
	if err := s.dispatcher.Dispatch(n); err != nil {
		logrus.WithError(err).WithField("file_id", n.PropertyFileID).Warn("Notification dispatch failed")
		return "the transition succeeded but the notification could not be delivered"
	}
	return ""
}

// transitionResult 把转换错误映射为指标标签
func transitionResult(err error) string {
	switch {
	case workflow.IsForbidden(err):
		return "forbidden"
	case workflow.IsConcurrentModification(err):
		return "conflict"
	case workflow.IsInvalidTransition(err):
		return "invalid"
	default:
		return "error"
	}
}
