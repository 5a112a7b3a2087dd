package service

import (
	"github.com/propflow/propertyflow/internal/metrics"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/workflow"
)

// OverallStats 全局文件统计
type OverallStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// DashboardStats 按角色的工作台统计
// Pending 是等待该角色动作的文件数,In-progress 语义随角色变化
type DashboardStats struct {
	Assigned       int64   `json:"assigned"`
	Pending        int64   `json:"pending"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// StatisticsService 统计服务接口
type StatisticsService interface {
	Overall() (*OverallStats, error)
	Dashboard(actor workflow.Actor) (*DashboardStats, error)
}

// statisticsService 统计服务实现
type statisticsService struct {
	files repository.FileRepository
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(files repository.FileRepository) StatisticsService {
	return &statisticsService{files: files}
}

// Overall 全局状态分布
// 同时把分布写入指标,状态分布 gauge 跟随查询刷新
func (s *statisticsService) Overall() (*OverallStats, error) {
	counts, err := s.files.CountByStatus()
	if err != nil {
		return nil, err
	}

	stats := &OverallStats{ByStatus: make(map[string]int64, len(workflow.AllStatuses))}
	for _, status := range workflow.AllStatuses {
		count := counts[string(status)]
		stats.ByStatus[string(status)] = count
		stats.Total += count
		metrics.SetFilesByStatus(string(status), float64(count))
	}
	return stats, nil
}

// Dashboard 当前用户的工作台统计
func (s *statisticsService) Dashboard(actor workflow.Actor) (*DashboardStats, error) {
	if actor.ID == "" {
		return nil, workflow.ErrUnauthenticated
	}

	filter := &repository.FileFilter{}
	var actionable workflow.Status

	switch actor.Role {
	case workflow.RoleCoordinator:
		filter.CoordinatorID = &actor.ID
	case workflow.RoleValidator:
		filter.ValidatorID = &actor.ID
		actionable = workflow.StatusValidation
	case workflow.RoleKeyIn:
		filter.KeyInOperatorID = &actor.ID
		actionable = workflow.StatusDataEntry
	case workflow.RoleVerification:
		filter.VerificationOfficerID = &actor.ID
		actionable = workflow.StatusVerification
	case workflow.RoleAdmin:
		// 全量
	default:
		return nil, &workflow.ForbiddenError{Reason: "unknown role"}
	}

	_, total, err := s.files.FindByFilter(filter)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Assigned: total}

	if actionable != "" {
		pendingFilter := *filter
		status := string(actionable)
		pendingFilter.Status = &status
		if _, pending, err := s.files.FindByFilter(&pendingFilter); err == nil {
			stats.Pending = pending
		} else {
			return nil, err
		}
	}

	completedFilter := *filter
	completed := string(workflow.StatusCompleted)
	completedFilter.Status = &completed
	if _, done, err := s.files.FindByFilter(&completedFilter); err == nil {
		stats.Completed = done
	} else {
		return nil, err
	}

	if total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(total)
	}
	return stats, nil
}
