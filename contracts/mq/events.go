package mq

import "time"

// 路由键
const (
	RoutingKeyDailyLogCreated  = "dailylog.created"
	RoutingKeyScheduleImported = "project.schedule_imported"
	RoutingKeyExtensionAdded   = "project.extension_added"
	RoutingKeyExtensionRemoved = "project.extension_removed"
	RoutingKeyProgressAlert    = "progress.alert"
)

// 影响进度评估的事件，worker 收到后重新评估并可能发出预警
var ProgressAffectingKeys = []string{
	RoutingKeyDailyLogCreated,
	RoutingKeyScheduleImported,
	RoutingKeyExtensionAdded,
	RoutingKeyExtensionRemoved,
}

// DailyLogCreatedPayload 施工日志新增
type DailyLogCreatedPayload struct {
	LogID          int     `json:"log_id"`
	ProjectID      int     `json:"project_id"`
	Date           string  `json:"date"`
	ActualProgress *string `json:"actual_progress,omitempty"`
	TraceID        string  `json:"trace_id,omitempty"`
}

// ScheduleImportedPayload 计划进度表导入完成
type ScheduleImportedPayload struct {
	ProjectID  int       `json:"project_id"`
	Points     int       `json:"points"`
	Skipped    int       `json:"skipped"`
	ImportedAt time.Time `json:"imported_at"`
	TraceID    string    `json:"trace_id,omitempty"`
}

// ExtensionChangedPayload 展延新增或撤销
type ExtensionChangedPayload struct {
	ProjectID    int    `json:"project_id"`
	ExtensionID  string `json:"extension_id"`
	Days         int    `json:"days"`
	TotalExtDays int    `json:"total_extension_days"`
	TraceID      string `json:"trace_id,omitempty"`
}

// ProjectEventPayload 所有进度相关事件共有的字段，worker 只需要 project_id
type ProjectEventPayload struct {
	ProjectID int    `json:"project_id"`
	TraceID   string `json:"trace_id,omitempty"`
}

// ProgressAlertPayload 进度预警
type ProgressAlertPayload struct {
	AlertID         int      `json:"alert_id"`
	ProjectID       int      `json:"project_id"`
	ProjectName     string   `json:"project_name"`
	Kind            string   `json:"kind"`
	PlannedProgress float64  `json:"planned_progress"`
	ActualProgress  *float64 `json:"actual_progress,omitempty"`
	RemainingDays   *int     `json:"remaining_days,omitempty"`
	Message         string   `json:"message"`
	Date            string   `json:"date"`
	TraceID         string   `json:"trace_id,omitempty"`
}
