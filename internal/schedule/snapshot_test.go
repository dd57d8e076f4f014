package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotProject() Project {
	return Project{
		StartDate:        d("2026-01-01"),
		ContractDuration: 21,
		ScheduleData: []SchedulePoint{
			{Date: d("2026-01-11"), Progress: 50},
		},
	}
}

func TestEvaluate_OnTrackAndBehind(t *testing.T) {
	now := time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC)

	snap := Evaluate(snapshotProject(), []LogEntry{{Date: d("2026-01-06"), ActualProgress: strp("30")}}, now)
	assert.Equal(t, "2026-01-06", snap.Today.String())
	assert.Equal(t, "2026-01-21", snap.PlannedCompletion.String())
	assert.Equal(t, 25.0, snap.PlannedProgress)
	require.NotNil(t, snap.ActualProgress)
	assert.Equal(t, 30.0, *snap.ActualProgress)
	assert.Equal(t, 5.0, *snap.Variance)
	assert.Equal(t, 15, *snap.RemainingDays)
	assert.Equal(t, StatusOnTrack, snap.Status)
	assert.Len(t, snap.Schedule, 3)

	snap = Evaluate(snapshotProject(), []LogEntry{{Date: d("2026-01-06"), ActualProgress: strp("20")}}, now)
	assert.Equal(t, -5.0, *snap.Variance)
	assert.Equal(t, StatusBehindSchedule, snap.Status)
}

func TestEvaluate_NoDataIsNotZero(t *testing.T) {
	now := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	snap := Evaluate(snapshotProject(), []LogEntry{{Date: d("2026-01-05")}}, now)
	assert.Nil(t, snap.ActualProgress)
	assert.Nil(t, snap.Variance)
	assert.Equal(t, StatusNoData, snap.Status)
}

func TestEvaluate_OverrunHasNegativeRemainingDays(t *testing.T) {
	p := snapshotProject()
	p.Extensions = []Extension{{ID: "x", Days: 5}}
	now := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	snap := Evaluate(p, []LogEntry{{Date: d("2026-02-01"), ActualProgress: strp("90")}}, now)
	assert.Equal(t, "2026-01-26", snap.PlannedCompletion.String())
	assert.Equal(t, 5, snap.ExtensionDays)
	require.NotNil(t, snap.RemainingDays)
	assert.Equal(t, -10, *snap.RemainingDays)
	assert.Equal(t, 100.0, snap.PlannedProgress)
	assert.Equal(t, StatusOverrun, snap.Status)

	snap = Evaluate(p, []LogEntry{{Date: d("2026-02-01"), ActualProgress: strp("100")}}, now)
	assert.Equal(t, StatusCompleted, snap.Status)
}

func TestEvaluate_MissingStartDateDegrades(t *testing.T) {
	snap := Evaluate(Project{}, nil, time.Now())
	assert.True(t, snap.PlannedCompletion.IsZero())
	assert.Nil(t, snap.RemainingDays)
	assert.Equal(t, 0.0, snap.PlannedProgress)
	assert.Equal(t, StatusUnknown, snap.Status)
}

func TestEvaluate_NotStarted(t *testing.T) {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	snap := Evaluate(snapshotProject(), nil, now)
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 0.0, snap.PlannedProgress)
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	logs := []LogEntry{{Date: d("2026-01-08"), ActualProgress: strp("33.3")}}
	p := snapshotProject()

	first := Evaluate(p, logs, now)
	second := Evaluate(p, logs, now)
	assert.Equal(t, first, second)
	assert.Equal(t, BuildSCurve(p, logs, now, 6), BuildSCurve(p, logs, now, 6))
}
