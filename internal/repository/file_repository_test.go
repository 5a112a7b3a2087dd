package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/database"
	"github.com/propflow/propertyflow/internal/model"
)

// setupTestDB 创建内存数据库并迁移全部表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestFile 构造一个处于勘验状态的测试文件
func newTestFile(code string) *model.PropertyFileModel {
	now := time.Now()
	return &model.PropertyFileModel{
		ID:              uuid.New().String(),
		FileCode:        code,
		OwnerName:       "Tan Ah Kow",
		PropertyAddress: "12 Jalan Besar",
		BankID:          "bank-1",
		CoordinatorID:   "u-coord",
		ValidatorID:     "u-val",
		Status:          "validation",
		CreatedBy:       "u-coord",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestFileRepositoryCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	file := newTestFile("JA100001")
	require.NoError(t, repo.Create(file))

	byID, err := repo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "JA100001", byID.FileCode)

	byCode, err := repo.FindByCode("JA100001")
	require.NoError(t, err)
	assert.Equal(t, file.ID, byCode.ID)

	_, err = repo.FindByID("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFileRepositoryUniqueFileCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	require.NoError(t, repo.Create(newTestFile("JA100002")))
	// 编号唯一索引拒绝重复
	assert.Error(t, repo.Create(newTestFile("JA100002")))
}

func TestUpdateStatusIfMatchingStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	file := newTestFile("JA100003")
	require.NoError(t, repo.Create(file))

	rows, err := repo.UpdateStatusIf(file.ID, "validation", "data-entry", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	updated, err := repo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "data-entry", updated.Status)
}

func TestUpdateStatusIfStaleStatusAffectsNoRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	file := newTestFile("JA100004")
	require.NoError(t, repo.Create(file))

	// 第一个执行者赢得转换
	rows, err := repo.UpdateStatusIf(file.ID, "validation", "data-entry", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	// 第二个执行者基于陈旧状态,条件不满足,零行受影响
	rows, err = repo.UpdateStatusIf(file.ID, "validation", "data-entry", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	// 状态未被破坏
	current, err := repo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "data-entry", current.Status)
}

func TestUpdateStatusIfWritesExtraColumns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	file := newTestFile("JA100005")
	file.Status = "verification"
	require.NoError(t, repo.Create(file))

	rows, err := repo.UpdateStatusIf(file.ID, "verification", "data-entry", map[string]interface{}{
		"verification_notes": "boundary measurements do not match the site photos",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	updated, err := repo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, "data-entry", updated.Status)
	assert.Equal(t, "boundary measurements do not match the site photos", updated.VerificationNotes)
}

func TestFindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	for i := 0; i < 5; i++ {
		f := newTestFile(fmt.Sprintf("JA20000%d", i))
		if i%2 == 0 {
			f.Status = "data-entry"
			f.KeyInOperatorID = "u-key"
		}
		require.NoError(t, repo.Create(f))
	}

	// 按状态过滤
	status := "data-entry"
	files, total, err := repo.FindByFilter(&FileFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, files, 3)

	// 按指派录入员过滤
	keyIn := "u-key"
	_, total, err = repo.FindByFilter(&FileFilter{KeyInOperatorID: &keyIn})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// 编号模糊搜索
	search := "00001"
	files, total, err = repo.FindByFilter(&FileFilter{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "JA200001", files[0].FileCode)

	// 分页:总数不受分页影响
	files, total, err = repo.FindByFilter(&FileFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, files, 2)
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)

	statuses := []string{"validation", "validation", "verification", "completed"}
	for i, s := range statuses {
		f := newTestFile(fmt.Sprintf("JA30000%d", i))
		f.Status = s
		require.NoError(t, repo.Create(f))
	}

	counts, err := repo.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["validation"])
	assert.Equal(t, int64(1), counts["verification"])
	assert.Equal(t, int64(1), counts["completed"])
	assert.Zero(t, counts["cancelled"])
}
