package service

import (
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

func setupMasterData(t *testing.T) MasterDataService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	audit := NewAuditLogService(repository.NewAuditLogRepository(db))
	return NewMasterDataService(repository.NewMasterDataRepository(db), audit)
}

func TestBankCRUD(t *testing.T) {
	svc := setupMasterData(t)

	// 创建时填充 ID 和时间戳
	bank, err := svc.SaveBank(&model.BankModel{Name: "Maybank", Branch: "Kuala Lumpur"}, "u-admin", noMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, bank.ID)
	assert.False(t, bank.CreatedAt.IsZero())

	// 更新保留创建时间
	bank.Branch = "Petaling Jaya"
	updated, err := svc.SaveBank(bank, "u-admin", noMeta)
	require.NoError(t, err)
	assert.Equal(t, bank.ID, updated.ID)
	assert.Equal(t, "Petaling Jaya", updated.Branch)

	banks, err := svc.ListBanks()
	require.NoError(t, err)
	require.Len(t, banks, 1)

	require.NoError(t, svc.DeleteBank(bank.ID, "u-admin", noMeta))
	banks, err = svc.ListBanks()
	require.NoError(t, err)
	assert.Empty(t, banks)

	// 删除不存在的记录
	err = svc.DeleteBank("missing", "u-admin", noMeta)
	require.Error(t, err)
	assert.True(t, workflow.IsNotFound(err))
}

func TestSaveBankValidates(t *testing.T) {
	svc := setupMasterData(t)

	_, err := svc.SaveBank(&model.BankModel{Name: "Maybank"}, "u-admin", noMeta)
	assert.Error(t, err)
}

func TestPropertyTypeAndLocationCRUD(t *testing.T) {
	svc := setupMasterData(t)

	pt, err := svc.SavePropertyType(&model.PropertyTypeModel{Category: "residential", Name: "Terrace house"}, "u-admin", noMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, pt.ID)

	types, err := svc.ListPropertyTypes()
	require.NoError(t, err)
	assert.Len(t, types, 1)

	loc, err := svc.SaveLocation(&model.LocationModel{State: "Selangor", District: "Petaling", City: "Shah Alam"}, "u-admin", noMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, loc.ID)

	locations, err := svc.ListLocations()
	require.NoError(t, err)
	assert.Len(t, locations, 1)

	require.NoError(t, svc.DeletePropertyType(pt.ID, "u-admin", noMeta))
	require.NoError(t, svc.DeleteLocation(loc.ID, "u-admin", noMeta))
}

func TestConfigurationCRUD(t *testing.T) {
	svc := setupMasterData(t)

	cfg, err := svc.SaveConfiguration(&model.SystemConfigurationModel{
		ConfigType: "format_template",
		Key:        "default_print_layout",
		Value:      []byte(`{"orientation":"portrait"}`),
	}, "u-admin", noMeta)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", cfg.CreatedBy)

	// 缺少值被拒
	_, err = svc.SaveConfiguration(&model.SystemConfigurationModel{
		ConfigType: "format_template",
		Key:        "empty",
	}, "u-admin", noMeta)
	assert.Error(t, err)

	configs, err := svc.ListConfigurations()
	require.NoError(t, err)
	assert.Len(t, configs, 1)

	require.NoError(t, svc.DeleteConfiguration(cfg.ID, "u-admin", noMeta))
}
