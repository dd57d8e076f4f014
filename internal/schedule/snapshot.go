package schedule

import "time"

// Status 工程进度状态
type Status string

const (
	StatusUnknown        Status = "unknown"
	StatusNotStarted     Status = "not_started"
	StatusNoData         Status = "no_data"
	StatusOnTrack        Status = "on_track"
	StatusBehindSchedule Status = "behind_schedule"
	StatusOverrun        Status = "overrun"
	StatusCompleted      Status = "completed"
)

// Snapshot 一次计算得到的全部派生值，所有字段共用同一个 today
// 指针字段为 nil 表示未知或无数据
type Snapshot struct {
	Today             Date            `json:"today"`
	PlannedCompletion Date            `json:"planned_completion"`
	ExtensionDays     int             `json:"extension_days"`
	Schedule          []SchedulePoint `json:"schedule"`
	PlannedProgress   float64         `json:"planned_progress"`
	ActualProgress    *float64        `json:"actual_progress"`
	Variance          *float64        `json:"variance"`
	RemainingDays     *int            `json:"remaining_days"`
	Status            Status          `json:"status"`
}

// Evaluate 计算工程的进度快照
func Evaluate(p Project, entries []LogEntry, now time.Time) Snapshot {
	today := Today(now)
	completion := PlannedCompletionDate(p)
	points := EffectiveSchedule(p, completion)

	snap := Snapshot{
		Today:             today,
		PlannedCompletion: completion,
		ExtensionDays:     p.ExtensionDays(),
		Schedule:          points,
		PlannedProgress:   Round1(PlannedProgressAsOf(points, today)),
	}

	if actual, ok := LatestActualProgress(entries); ok {
		a := Round1(actual)
		v := Round1(a - snap.PlannedProgress)
		snap.ActualProgress = &a
		snap.Variance = &v
	}
	if days, ok := RemainingDays(completion, today); ok {
		snap.RemainingDays = &days
	}

	snap.Status = classify(p, snap)
	return snap
}

func classify(p Project, s Snapshot) Status {
	switch {
	case p.StartDate.IsZero():
		return StatusUnknown
	case s.ActualProgress != nil && *s.ActualProgress >= 100:
		return StatusCompleted
	case s.RemainingDays != nil && *s.RemainingDays < 0:
		return StatusOverrun
	case s.Today.Before(p.StartDate):
		return StatusNotStarted
	case s.ActualProgress == nil:
		return StatusNoData
	case *s.Variance < 0:
		return StatusBehindSchedule
	default:
		return StatusOnTrack
	}
}
