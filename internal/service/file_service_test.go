package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/database"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

var (
	coordinator = workflow.Actor{ID: "u-coord", Role: workflow.RoleCoordinator}
	validator   = workflow.Actor{ID: "u-val", Role: workflow.RoleValidator}
	keyIn       = workflow.Actor{ID: "u-key", Role: workflow.RoleKeyIn}
	officer     = workflow.Actor{ID: "u-ver", Role: workflow.RoleVerification}
	admin       = workflow.Actor{ID: "u-admin", Role: workflow.RoleAdmin}

	noMeta = ClientMeta{IP: "127.0.0.1", UserAgent: "test"}
)

// setupFileService 内存数据库 + 未启动工作协程的派发器
// Dispatch 落库是同步的,不启动 worker 就没有 WebSocket 推送,正好适合断言
func setupFileService(t *testing.T) (FileService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	dispatcher := NewDispatcher(repository.NewNotificationRepository(db), nil, 64, 1)
	return NewFileService(db, workflow.NewMachine(), dispatcher), db
}

func createFileRequest() *CreateFileRequest {
	return &CreateFileRequest{
		OwnerName:             "Lim Mei Ling",
		PropertyAddress:       "88 Lorong Damai",
		BankID:                "bank-1",
		ValidatorID:           validator.ID,
		KeyInOperatorID:       keyIn.ID,
		VerificationOfficerID: officer.ID,
	}
}

func validationRequest() *SubmitValidationRequest {
	return &SubmitValidationRequest{
		GPSLatitude:       3.139,
		GPSLongitude:      101.6869,
		PropertyCondition: "good",
		PropertyType:      "residential",
		VisitDate:         "2026-08-20",
		Photos: []PhotoInput{
			{PhotoURL: "https://blobs.local/p1.jpg", PhotoType: "front"},
			{PhotoURL: "https://blobs.local/p2.jpg", PhotoType: "boundary"},
		},
	}
}

func propertyDataRequest() *SubmitPropertyDataRequest {
	return &SubmitPropertyDataRequest{
		Length:           20,
		Width:            15,
		Area:             300,
		ConstructionType: "concrete",
		EstimatedValue:   480000,
	}
}

func notificationCount(t *testing.T, db *gorm.DB, fileID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).Where("property_file_id = ?", fileID).Count(&count).Error)
	return count
}

func TestCreateFile(t *testing.T) {
	svc, db := setupFileService(t)

	file, warning, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	assert.Empty(t, warning)

	// 创建即指派,直接进入勘验状态
	assert.Equal(t, string(workflow.StatusValidation), file.Status)
	assert.Regexp(t, regexp.MustCompile(`^JA[0-9]{6}$`), file.FileCode)
	assert.Equal(t, coordinator.ID, file.CoordinatorID)

	// 创建事件进入状态历史
	history, err := repository.NewStatusHistoryRepository(db).FindByFile(file.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "create", history[0].Event)
	assert.Equal(t, string(workflow.StatusValidation), history[0].ToStatus)

	// 勘验员收到指派通知,且只有一条
	assert.Equal(t, int64(1), notificationCount(t, db, file.ID))

	// 审计日志落库
	logs, err := repository.NewAuditLogRepository(db).FindByObject("PropertyFile", file.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestCreateFileRequiresCoordinatorRole(t *testing.T) {
	svc, _ := setupFileService(t)

	_, _, err := svc.Create(validator, createFileRequest(), noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsForbidden(err))

	_, _, err = svc.Create(workflow.Actor{Role: workflow.RoleCoordinator}, createFileRequest(), noMeta)
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)

	// 管理员可以代为创建
	_, _, err = svc.Create(admin, createFileRequest(), noMeta)
	assert.NoError(t, err)
}

func TestFullLifecycle(t *testing.T) {
	svc, db := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	// 勘验提交: validation -> data-entry
	outcome, err := svc.SubmitValidation(file.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusValidation), outcome.FromStatus)
	assert.Equal(t, string(workflow.StatusDataEntry), outcome.ToStatus)

	// 勘验数据和照片落库
	evidence := repository.NewEvidenceRepository(db)
	vd, err := evidence.FindValidationByFile(file.ID)
	require.NoError(t, err)
	photos, err := evidence.FindPhotosByValidation(vd.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 2)

	// 录入提交: data-entry -> verification
	outcome, err = svc.SubmitPropertyData(file.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusVerification), outcome.ToStatus)

	// 审核通过: verification -> ready-to-print
	outcome, err = svc.Approve(file.ID, officer, "all measurements verified", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusReadyToPrint), outcome.ToStatus)

	// 打印完成: ready-to-print -> completed
	outcome, err = svc.MarkPrinted(file.ID, officer, noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCompleted), outcome.ToStatus)

	final, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCompleted), final.Status)
	assert.NotNil(t, final.CompletedAt)
	assert.Equal(t, "all measurements verified", final.VerificationNotes)

	// 终态不再接受任何事件
	_, err = svc.MarkPrinted(file.ID, admin, noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsInvalidTransition(err))

	// 状态历史完整: create + 4 次转换
	history, err := repository.NewStatusHistoryRepository(db).FindByFile(file.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, string(workflow.EventMarkPrinted), history[4].Event)

	// 每次转换恰好派发一条通知: 指派 + 4 次状态变更
	assert.Equal(t, int64(5), notificationCount(t, db, file.ID))
}

// approveNotificationCount 统计审核通过通知条数
func approveNotificationCount(t *testing.T, db *gorm.DB, fileID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).
		Where("property_file_id = ? AND title = ?", fileID, "File approved").
		Count(&count).Error)
	return count
}

func TestConcurrentApproveHasOneWinner(t *testing.T) {
	svc, db := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitValidation(file.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitPropertyData(file.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)

	// 在事务读取与条件更新之间插入另一个写入者的状态变更,
	// 确定性地复现两个操作者撞上同一文件的竞争窗口
	const interleave = "interleaved_status_writer"
	fired := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(interleave, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "property_files" {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE property_files SET status = ? WHERE id = ?", string(workflow.StatusOnHold), file.ID)
	}))

	// 输家: 条件更新命中 0 行,拿到并发冲突
	_, err = svc.Approve(file.ID, officer, "checked on site", noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsConcurrentModification(err))
	require.True(t, fired)

	// 输家的事务整体回滚: 状态未变,没有新的历史,也没有审核通知
	current, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusVerification), current.Status)

	history, err := repository.NewStatusHistoryRepository(db).FindByFile(file.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, int64(0), approveNotificationCount(t, db, file.ID))

	// 赢家重读后提交成功,恰好派发一条审核通过通知
	require.NoError(t, db.Callback().Update().Remove(interleave))
	outcome, err := svc.Approve(file.ID, officer, "checked on site", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusReadyToPrint), outcome.ToStatus)
	assert.Equal(t, int64(1), approveNotificationCount(t, db, file.ID))
}

func TestSubmitValidationGuards(t *testing.T) {
	svc, db := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	// 零照片被守卫拦下,状态不变
	req := validationRequest()
	req.Photos = nil
	_, err = svc.SubmitValidation(file.ID, validator, req, noMeta)
	require.Error(t, err)
	var terr *workflow.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "photos", terr.Field)

	current, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusValidation), current.Status)

	// 守卫失败不留下残缺的勘验数据
	_, err = repository.NewEvidenceRepository(db).FindValidationByFile(file.ID)
	assert.True(t, repository.IsNotFound(err))

	// 非指派勘验员被拒
	_, err = svc.SubmitValidation(file.ID, workflow.Actor{ID: "u-other", Role: workflow.RoleValidator}, validationRequest(), noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsForbidden(err))
}

func TestRejectAndResubmit(t *testing.T) {
	svc, db := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitValidation(file.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitPropertyData(file.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)

	// 拒绝必须附说明
	_, err = svc.Reject(file.ID, officer, "", noMeta)
	require.Error(t, err)
	var terr *workflow.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "verification_notes", terr.Field)

	// 拒绝回到录入状态并记录原因
	outcome, err := svc.Reject(file.ID, officer, "area does not match the site photos", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDataEntry), outcome.ToStatus)

	current, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "area does not match the site photos", current.VerificationNotes)

	// 修正后重新提交,旧录入记录被替换而不是累积
	fixed := propertyDataRequest()
	fixed.Area = 280
	_, err = svc.SubmitPropertyData(file.ID, keyIn, fixed, noMeta)
	require.NoError(t, err)

	var rows int64
	require.NoError(t, db.Model(&model.PropertyDataModel{}).Where("property_file_id = ?", file.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	pd, err := repository.NewEvidenceRepository(db).FindPropertyDataByFile(file.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(280), pd.Area)

	// 重新提交后可以正常通过
	outcome, err = svc.Approve(file.ID, officer, "", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusReadyToPrint), outcome.ToStatus)
}

func TestHoldAndResume(t *testing.T) {
	svc, db := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitValidation(file.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)

	// 挂起记录挂起前状态
	outcome, err := svc.Hold(file.ID, coordinator, "owner requested a pause", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusOnHold), outcome.ToStatus)

	held, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDataEntry), held.PreviousStatus)

	// 挂起状态下业务事件被拒
	_, err = svc.SubmitPropertyData(file.ID, keyIn, propertyDataRequest(), noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsInvalidTransition(err))

	// 恢复到挂起前状态并清除记录
	outcome, err = svc.Resume(file.ID, coordinator, noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDataEntry), outcome.ToStatus)

	resumed, err := repository.NewFileRepository(db).FindByID(file.ID)
	require.NoError(t, err)
	assert.Empty(t, resumed.PreviousStatus)
}

func TestCancelIsAdminOnlyAndTerminal(t *testing.T) {
	svc, _ := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	_, err = svc.Cancel(file.ID, coordinator, "duplicate entry", noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsForbidden(err))

	outcome, err := svc.Cancel(file.ID, admin, "duplicate entry", noMeta)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusCancelled), outcome.ToStatus)

	// 取消后无法恢复
	_, err = svc.Resume(file.ID, admin, noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsInvalidTransition(err))
}

func TestVisibilityScoping(t *testing.T) {
	svc, _ := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	// 指派人员和管理员可见
	for _, a := range []workflow.Actor{coordinator, validator, keyIn, officer, admin} {
		_, err := svc.Get(file.ID, a)
		assert.NoError(t, err, "actor %s should see the file", a.ID)
	}

	// 无关用户不可见
	_, err = svc.Get(file.ID, workflow.Actor{ID: "u-stranger", Role: workflow.RoleValidator})
	require.Error(t, err)
	assert.True(t, workflow.IsForbidden(err))

	// 列表按角色字段强制过滤
	files, total, err := svc.List(validator, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)

	_, total, err = svc.List(workflow.Actor{ID: "u-stranger", Role: workflow.RoleValidator}, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTransitionOnMissingFile(t *testing.T) {
	svc, _ := setupFileService(t)

	_, err := svc.Approve("no-such-file", officer, "", noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsNotFound(err))
}

func TestGetAggregatesDetail(t *testing.T) {
	svc, _ := setupFileService(t)

	req := createFileRequest()
	req.Documents = []DocumentInput{{Name: "grant.pdf", DocumentType: "title_grant", FileURL: "https://blobs.local/grant.pdf"}}
	file, _, err := svc.Create(coordinator, req, noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitValidation(file.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitPropertyData(file.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)

	detail, err := svc.Get(file.ID, admin)
	require.NoError(t, err)
	require.NotNil(t, detail.ValidationData)
	require.NotNil(t, detail.PropertyData)
	assert.Len(t, detail.Photos, 2)
	assert.Len(t, detail.Documents, 1)
	assert.Len(t, detail.History, 3)
}

func TestAttachDocument(t *testing.T) {
	svc, _ := setupFileService(t)

	file, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	doc, err := svc.AttachDocument(file.ID, coordinator, &DocumentInput{
		Name:    "survey-plan.pdf",
		FileURL: "https://blobs.local/survey-plan.pdf",
	}, noMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)

	// 终态文件不再接受文档
	_, err = svc.Cancel(file.ID, admin, "withdrawn", noMeta)
	require.NoError(t, err)
	_, err = svc.AttachDocument(file.ID, admin, &DocumentInput{
		Name:    "late.pdf",
		FileURL: "https://blobs.local/late.pdf",
	}, noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsInvalidTransition(err))
}
