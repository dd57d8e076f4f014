package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitelog/internal/schedule"
)

func TestProjectToSchedule_NormalizesDates(t *testing.T) {
	start := "2026/01/01"
	duration := 30
	p := &Project{
		StartDate:        &start,
		ContractDuration: &duration,
		Extensions:       []Extension{{ID: "a", Days: 10, Date: "2026/01/20"}},
		ScheduleData: []SchedulePointRecord{
			{Date: "2026/01/15", Progress: 40},
			{Date: "garbage", Progress: 50},
		},
	}

	sp, dropped := p.ToSchedule()
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "2026-01-01", sp.StartDate.String())
	assert.Equal(t, 30, sp.ContractDuration)
	require.Len(t, sp.ScheduleData, 1)
	assert.Equal(t, "2026-01-15", sp.ScheduleData[0].Date.String())
	assert.Equal(t, "2026-02-09", schedule.PlannedCompletionDate(sp).String())
}

func TestProjectToSchedule_AbsentFields(t *testing.T) {
	sp, dropped := (&Project{}).ToSchedule()
	assert.Zero(t, dropped)
	assert.True(t, sp.StartDate.IsZero())
	assert.Zero(t, sp.ContractDuration)
	assert.Empty(t, sp.ScheduleData)
	assert.Empty(t, sp.Extensions)
}

func TestToEntries_KeepsOrder(t *testing.T) {
	v := "12.5"
	logs := []DailyLog{
		{Date: "2026/01/03", ActualProgress: &v},
		{Date: "2026-01-02"},
	}
	entries := ToEntries(logs)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-01-03", entries[0].Date.String())
	assert.Equal(t, &v, entries[0].ActualProgress)
	assert.Nil(t, entries[1].ActualProgress)
}
