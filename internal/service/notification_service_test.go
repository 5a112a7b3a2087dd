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

func setupNotifications(t *testing.T) (NotificationService, *Dispatcher, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	repo := repository.NewNotificationRepository(db)
	return NewNotificationService(repo), NewDispatcher(repo, nil, 16, 1), db
}

func TestDispatchPersistsBeforePush(t *testing.T) {
	_, dispatcher, db := setupNotifications(t)

	// worker 未启动,只验证同步落库部分
	err := dispatcher.Dispatch(&model.NotificationModel{
		RecipientID: "u-val",
		Type:        "info",
		Title:       "New file assigned",
		Message:     "File JA100001 assigned for validation",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDispatchFillsIDAndTimestamp(t *testing.T) {
	_, dispatcher, _ := setupNotifications(t)

	n := &model.NotificationModel{
		RecipientID: "u-val",
		Type:        "info",
		Title:       "t",
		Message:     "m",
	}
	require.NoError(t, dispatcher.Dispatch(n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestDispatchRejectsInvalidNotification(t *testing.T) {
	_, dispatcher, db := setupNotifications(t)

	// 缺少消息体
	err := dispatcher.Dispatch(&model.NotificationModel{
		RecipientID: "u-val",
		Type:        "info",
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDispatchDoesNotBlockWhenQueueIsFull(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	// 队列容量 1,第二条推送被丢弃但依然落库
	dispatcher := NewDispatcher(repository.NewNotificationRepository(db), nil, 1, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, dispatcher.Dispatch(&model.NotificationModel{
			RecipientID: "u-val",
			Type:        "info",
			Title:       "t",
			Message:     "m",
		}))
	}

	var count int64
	require.NoError(t, db.Model(&model.NotificationModel{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestMarkReadAndDeleteScoping(t *testing.T) {
	svc, dispatcher, _ := setupNotifications(t)

	n := &model.NotificationModel{
		RecipientID: "u-val",
		Type:        "info",
		Title:       "t",
		Message:     "m",
	}
	require.NoError(t, dispatcher.Dispatch(n))

	// 他人操作按不存在处理
	err := svc.MarkRead(n.ID, "u-other")
	require.Error(t, err)
	assert.True(t, workflow.IsNotFound(err))

	require.NoError(t, svc.MarkRead(n.ID, "u-val"))

	err = svc.Delete(n.ID, "u-other")
	require.Error(t, err)
	assert.True(t, workflow.IsNotFound(err))
	require.NoError(t, svc.Delete(n.ID, "u-val"))

	list, total, err := svc.List("u-val", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
