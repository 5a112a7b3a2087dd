package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 文件创建数
	filesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "property_files_created_total",
			Help: "Total number of property files created",
		},
	)

	// 状态转换数
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total number of workflow transitions",
		},
		[]string{"event", "result"}, // result: success, forbidden, invalid, conflict
	)

	// 文件状态分布
	filesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "property_files_by_status",
			Help: "Number of property files by status",
		},
		[]string{"status"},
	)

	// 通知队列深度
	notificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Number of notifications waiting for dispatch",
		},
	)

	// 在线 WebSocket 客户端数
	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_connected",
			Help: "Number of connected websocket clients",
		},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(filesCreatedTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(filesByStatus)
	prometheus.MustRegister(notificationQueueDepth)
	prometheus.MustRegister(websocketClients)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)

	// 注册 Go 运行时指标(已注册则忽略错误)
	_ = prometheus.Register(prometheus.NewGoCollector())
	_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordFileCreated 记录文件创建
func RecordFileCreated() {
	filesCreatedTotal.Inc()
}

// RecordTransition 记录状态转换结果
func RecordTransition(event string, result string) {
	transitionsTotal.WithLabelValues(event, result).Inc()
}

// SetFilesByStatus 更新文件状态分布
func SetFilesByStatus(status string, count float64) {
	filesByStatus.WithLabelValues(status).Set(count)
}

// SetWebSocketClients 更新在线 WebSocket 客户端数
func SetWebSocketClients(count float64) {
	websocketClients.Set(count)
}

// SetNotificationQueueDepth 更新通知队列深度
func SetNotificationQueueDepth(depth float64) {
	notificationQueueDepth.Set(depth)
}

// UpdateDatabaseMetrics 更新数据库连接池指标
func UpdateDatabaseMetrics(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
}
