package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

func TestOverallStats(t *testing.T) {
	svc, db := setupFileService(t)
	stats := NewStatisticsService(repository.NewFileRepository(db))

	// 两个文件,一个走完全程
	file1, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	_, _, err = svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	_, err = svc.SubmitValidation(file1.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitPropertyData(file1.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.Approve(file1.ID, officer, "", noMeta)
	require.NoError(t, err)
	_, err = svc.MarkPrinted(file1.ID, officer, noMeta)
	require.NoError(t, err)

	overall, err := stats.Overall()
	require.NoError(t, err)
	assert.Equal(t, int64(2), overall.Total)
	assert.Equal(t, int64(1), overall.ByStatus[string(workflow.StatusValidation)])
	assert.Equal(t, int64(1), overall.ByStatus[string(workflow.StatusCompleted)])
	assert.Zero(t, overall.ByStatus[string(workflow.StatusCancelled)])
}

func TestDashboardStats(t *testing.T) {
	svc, db := setupFileService(t)
	stats := NewStatisticsService(repository.NewFileRepository(db))

	file1, _, err := svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)
	_, _, err = svc.Create(coordinator, createFileRequest(), noMeta)
	require.NoError(t, err)

	// 勘验员: 两个指派,两个都等待勘验
	dash, err := stats.Dashboard(validator)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.Assigned)
	assert.Equal(t, int64(2), dash.Pending)
	assert.Zero(t, dash.Completed)

	// 一个文件走完全程
	_, err = svc.SubmitValidation(file1.ID, validator, validationRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.SubmitPropertyData(file1.ID, keyIn, propertyDataRequest(), noMeta)
	require.NoError(t, err)
	_, err = svc.Approve(file1.ID, officer, "", noMeta)
	require.NoError(t, err)
	_, err = svc.MarkPrinted(file1.ID, officer, noMeta)
	require.NoError(t, err)

	dash, err = stats.Dashboard(validator)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.Assigned)
	assert.Equal(t, int64(1), dash.Pending)
	assert.Equal(t, int64(1), dash.Completed)
	assert.InDelta(t, 0.5, dash.CompletionRate, 1e-9)

	// 未认证
	_, err = stats.Dashboard(workflow.Actor{Role: workflow.RoleValidator})
	assert.ErrorIs(t, err, workflow.ErrUnauthenticated)
}
