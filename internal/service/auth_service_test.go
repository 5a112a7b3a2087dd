package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/database"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

func setupAuthService(t *testing.T) (AuthService, UserService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	audit := NewAuditLogService(repository.NewAuditLogRepository(db))
	tokens := auth.NewTokenManager("test-secret", 1)
	return NewAuthService(users, tokens, audit), NewUserService(users, audit), db
}

func seedUser(t *testing.T, userSvc UserService, email, position string) string {
	t.Helper()
	u, err := userSvc.Create(&CreateUserRequest{
		FullName: "Siti Nurhaliza",
		Email:    email,
		Position: position,
		Password: "correct-horse",
	}, "u-admin", noMeta)
	require.NoError(t, err)
	return u.ID
}

func TestLoginSuccess(t *testing.T) {
	authSvc, userSvc, _ := setupAuthService(t)
	seedUser(t, userSvc, "siti@propertyflow.local", string(workflow.RoleValidator))

	result, err := authSvc.Login(&LoginRequest{
		Email:    "siti@propertyflow.local",
		Password: "correct-horse",
	}, noMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "siti@propertyflow.local", result.User.Email)

	// 签发的 token 可以验证并携带角色
	claims, err := auth.NewTokenManager("test-secret", 1).Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.RoleValidator), claims.Position)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	authSvc, userSvc, _ := setupAuthService(t)
	seedUser(t, userSvc, "siti@propertyflow.local", string(workflow.RoleValidator))

	// 密码错误
	_, errWrongPassword := authSvc.Login(&LoginRequest{
		Email:    "siti@propertyflow.local",
		Password: "wrong",
	}, noMeta)
	require.Error(t, errWrongPassword)
	assert.ErrorIs(t, errWrongPassword, workflow.ErrUnauthenticated)

	// 账号不存在
	_, errNoAccount := authSvc.Login(&LoginRequest{
		Email:    "nobody@propertyflow.local",
		Password: "whatever",
	}, noMeta)
	require.Error(t, errNoAccount)
	assert.ErrorIs(t, errNoAccount, workflow.ErrUnauthenticated)

	// 两种失败对外不可区分
	assert.Equal(t, errWrongPassword.Error(), errNoAccount.Error())
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	authSvc, userSvc, _ := setupAuthService(t)
	id := seedUser(t, userSvc, "siti@propertyflow.local", string(workflow.RoleValidator))

	require.NoError(t, userSvc.Deactivate(id, "u-admin", noMeta))

	_, err := authSvc.Login(&LoginRequest{
		Email:    "siti@propertyflow.local",
		Password: "correct-horse",
	}, noMeta)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)

	// 停用是软删除,历史记录仍可查
	u, err := userSvc.Get(id)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestCurrentUser(t *testing.T) {
	authSvc, userSvc, _ := setupAuthService(t)
	id := seedUser(t, userSvc, "siti@propertyflow.local", string(workflow.RoleValidator))

	u, err := authSvc.CurrentUser(id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = authSvc.CurrentUser("missing")
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)
}

func TestCreateUserRejectsUnknownPosition(t *testing.T) {
	_, userSvc, _ := setupAuthService(t)

	_, err := userSvc.Create(&CreateUserRequest{
		FullName: "Ahmad",
		Email:    "ahmad@propertyflow.local",
		Position: "intern",
		Password: "long-enough",
	}, "u-admin", noMeta)
	assert.Error(t, err)
}
