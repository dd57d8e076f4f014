package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitelog_mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "result"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitelog_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitelog_db_slow_query_total",
			Help: "Total number of slow database queries",
		},
		[]string{"operation"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitelog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	// 进度计算次数，按结果状态统计
	ProgressEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitelog_progress_evaluations_total",
			Help: "Total number of schedule progress evaluations",
		},
		[]string{"status"},
	)

	// 进度预警
	ProgressAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitelog_progress_alerts_total",
			Help: "Total number of progress alerts raised",
		},
		[]string{"kind"},
	)

	// 计划进度导入
	ScheduleImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitelog_schedule_imports_total",
			Help: "Total number of schedule imports",
		},
		[]string{"status"}, // success, failed
	)

	// Outbox 发布结果
	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitelog_outbox_published_total",
			Help: "Total number of outbox events handed to the broker",
		},
		[]string{"routing_key", "status"},
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, result string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, result).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementSlowQuery 慢查询计数
func IncrementSlowQuery(operation string) {
	SlowQueryCount.WithLabelValues(operation).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func IncrementProgressEvaluation(status string) {
	ProgressEvaluations.WithLabelValues(status).Inc()
}

func IncrementProgressAlert(kind string) {
	ProgressAlerts.WithLabelValues(kind).Inc()
}

func IncrementScheduleImport(status string) {
	ScheduleImports.WithLabelValues(status).Inc()
}

func IncrementOutboxPublished(routingKey, status string) {
	OutboxPublished.WithLabelValues(routingKey, status).Inc()
}
