package model

import "time"

const (
	AlertKindBehindSchedule = "behind_schedule"
	AlertKindOverrun        = "overrun"
)

// ProgressAlert 进度预警
type ProgressAlert struct {
	ID              int       `json:"id"`
	ProjectID       int       `json:"project_id"`
	Kind            string    `json:"kind"`
	Date            string    `json:"date"`
	PlannedProgress float64   `json:"planned_progress"`
	ActualProgress  *float64  `json:"actual_progress"`
	RemainingDays   *int      `json:"remaining_days"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}
