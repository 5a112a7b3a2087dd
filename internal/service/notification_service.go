package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/propflow/propertyflow/internal/metrics"
	"github.com/propflow/propertyflow/internal/model"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/websocket"
	"github.com/propflow/propertyflow/internal/workflow"
)

// NotificationService 通知服务接口
type NotificationService interface {
	List(recipientID string, page, pageSize int) ([]*model.NotificationModel, int64, error)
	MarkRead(id string, recipientID string) error
	Delete(id string, recipientID string) error
}

// notificationService 通知服务实现
type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// List 查询某用户可见的通知(本人 + 广播)
func (s *notificationService) List(recipientID string, page, pageSize int) ([]*model.NotificationModel, int64, error) {
	return s.repo.FindForRecipient(recipientID, page, pageSize)
}

// MarkRead 标记通知已读
// 只有收件人本人可以标记,否则按不存在处理
func (s *notificationService) MarkRead(id string, recipientID string) error {
	rows, err := s.repo.MarkRead(id, recipientID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification %s not found for recipient: %w", id, workflow.ErrNotFound)
	}
	return nil
}

// Delete 删除通知
func (s *notificationService) Delete(id string, recipientID string) error {
	rows, err := s.repo.Delete(id, recipientID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification %s not found for recipient: %w", id, workflow.ErrNotFound)
	}
	return nil
}

// Dispatcher 通知派发器
// 落库是同步的,保证转换成功后通知一定持久化;
// WebSocket 推送走有界队列异步执行,队列满时丢弃推送但不丢通知
type Dispatcher struct {
	repo    repository.NotificationRepository
	hub     *websocket.Hub
	queue   chan *model.NotificationModel
	workers int
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDispatcher 创建通知派发器
func NewDispatcher(repo repository.NotificationRepository, hub *websocket.Hub, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		repo:    repo,
		hub:     hub,
		queue:   make(chan *model.NotificationModel, queueSize),
		workers: workers,
	}
}

// Start 启动推送工作协程
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	logrus.WithField("workers", d.workers).Info("Notification dispatcher started")
}

// Stop 关闭队列并等待在途推送完成
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	logrus.Info("Notification dispatcher stopped")
}

// Dispatch 派发一条通知
// 持久化失败返回错误,由调用方作为非致命警告上报;推送永不阻塞调用方
func (d *Dispatcher) Dispatch(n *model.NotificationModel) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	if err := d.repo.Save(n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	select {
	case d.queue <- n:
		metrics.SetNotificationQueueDepth(float64(len(d.queue)))
	default:
		// 队列满,放弃实时推送;通知已落库,客户端轮询仍可见
		logrus.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"recipient_id":    n.RecipientID,
		}).Warn("Notification push queue is full, push skipped")
	}
	return nil
}

// worker 消费队列并通过 WebSocket 推送
func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.queue {
		metrics.SetNotificationQueueDepth(float64(len(d.queue)))

		payload, err := json.Marshal(n)
		if err != nil {
			logrus.WithError(err).WithField("notification_id", n.ID).Error("Failed to encode notification")
			continue
		}

		if n.RecipientID == "" {
			d.hub.Broadcast <- payload
			continue
		}
		d.hub.PushToUser(n.RecipientID, payload)
	}
}
