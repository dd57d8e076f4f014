package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func scurveProject() Project {
	return Project{StartDate: d("2026-01-01"), ContractDuration: 31}
}

func TestBuildSCurve_LinearRampWithoutSchedule(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	logs := []LogEntry{
		{Date: d("2026-01-12"), ActualProgress: strp("30")},
		{Date: d("2026-01-05"), ActualProgress: strp("10")},
		{Date: d("2026-01-05"), ActualProgress: strp("8")},
	}

	curve := BuildSCurve(scurveProject(), logs, now, 6)

	assert.Equal(t, []string{
		"2026-01-01", "2026-01-06", "2026-01-11", "2026-01-16",
		"2026-01-21", "2026-01-26", "2026-01-31",
	}, curve.Labels)
	assert.Equal(t, []float64{0, 16.7, 33.3, 50, 66.7, 83.3, 100}, curve.Planned)
	assert.Equal(t, []*float64{fp(0), fp(10), fp(10), nil, nil, nil, nil}, curve.Actual)
}

func TestBuildSCurve_StepFunctionOnCheckpoints(t *testing.T) {
	p := scurveProject()
	p.ScheduleData = []SchedulePoint{
		{Date: d("2026-01-20"), Progress: 60},
		{Date: d("2026-01-10"), Progress: 20},
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	curve := BuildSCurve(p, nil, now, 6)

	assert.Equal(t, []float64{0, 0, 20, 20, 60, 60, 60}, curve.Planned)
	// 无日志：首点为 0，其余为 nil
	assert.Equal(t, []*float64{fp(0), nil, nil, nil, nil, nil, nil}, curve.Actual)
}

func TestBuildSCurve_LongContract(t *testing.T) {
	p := Project{StartDate: d("2026-01-01"), ContractDuration: 200000}
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	curve := BuildSCurve(p, nil, now, 2)

	assert.Equal(t, []string{
		"2026-01-01",
		p.StartDate.AddDays(99999).String(),
		PlannedCompletionDate(p).String(),
	}, curve.Labels)
	assert.Equal(t, []float64{0, 50, 100}, curve.Planned)
	assert.Equal(t, []*float64{fp(0), nil, nil}, curve.Actual)
}

func TestBuildSCurve_FutureIsNeverFilled(t *testing.T) {
	logs := []LogEntry{{Date: d("2026-01-02"), ActualProgress: strp("5")}}
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	curve := BuildSCurve(scurveProject(), logs, now, 6)
	require.Len(t, curve.Actual, 7)
	assert.NotNil(t, curve.Actual[0])
	for i := 1; i < len(curve.Actual); i++ {
		assert.Nil(t, curve.Actual[i], "index %d", i)
		assert.NotZero(t, curve.Planned[i])
	}
}

func TestBuildSCurve_OnlyTrailingGaps(t *testing.T) {
	logs := []LogEntry{
		{Date: d("2026-01-20"), ActualProgress: strp("50")},
		{Date: d("2026-01-08"), ActualProgress: nil},
	}
	now := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)
	curve := BuildSCurve(scurveProject(), logs, now, 6)

	seenGap := false
	for _, v := range curve.Actual {
		if v == nil {
			seenGap = true
			continue
		}
		assert.False(t, seenGap, "value after a gap")
	}
}

func TestBuildSCurve_DefaultStepsAndUnknownStart(t *testing.T) {
	curve := BuildSCurve(scurveProject(), nil, time.Now(), 0)
	assert.Len(t, curve.Labels, DefaultSCurveSteps+1)

	empty := BuildSCurve(Project{ContractDuration: 30}, nil, time.Now(), 6)
	assert.Empty(t, empty.Labels)
	assert.Empty(t, empty.Planned)
	assert.Empty(t, empty.Actual)
}
