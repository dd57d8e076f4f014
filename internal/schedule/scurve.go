package schedule

import "time"

// DefaultSCurveSteps S 曲线默认分段数
const DefaultSCurveSteps = 6

// SCurve 图表数据；Actual 中 nil 表示无值，需渲染为断点而不是 0
type SCurve struct {
	Labels  []string   `json:"labels"`
	Planned []float64  `json:"plannedSeries"`
	Actual  []*float64 `json:"actualSeries"`
}

// BuildSCurve 将 [开工日, 计划完工日] 等分为 steps 段（共 steps+1 个点）
// 计划值取不晚于该时间点的最后一个检查点；无检查点时按 0→100 直线
// 实际值只填到 now 为止，之后一律为 nil
func BuildSCurve(p Project, entries []LogEntry, now time.Time, steps int) SCurve {
	if steps <= 0 {
		steps = DefaultSCurveSteps
	}

	completion := PlannedCompletionDate(p)
	curve := SCurve{Labels: []string{}, Planned: []float64{}, Actual: []*float64{}}
	if p.StartDate.IsZero() || completion.IsZero() {
		return curve
	}

	start := p.StartDate.Time()
	total := completion.Time().Unix() - start.Unix()
	clock := wallClock(now)
	points := sortedPoints(p.ScheduleData)
	logs := datedLogs(entries)

	for i := 0; i <= steps; i++ {
		offset := int64(float64(total) * float64(i) / float64(steps))
		ts := time.Unix(start.Unix()+offset, 0).UTC()
		curve.Labels = append(curve.Labels, ts.Format(dateLayout))
		curve.Planned = append(curve.Planned, plannedStep(points, ts, i, steps))
		curve.Actual = append(curve.Actual, actualAt(logs, ts, clock, i))
	}
	return curve
}

// wallClock 把 now 的当地墙上时间表示为 UTC，与 Date 的 UTC 零点对齐
func wallClock(now time.Time) time.Time {
	y, m, d := now.Date()
	h, mi, s := now.Clock()
	return time.Date(y, m, d, h, mi, s, now.Nanosecond(), time.UTC)
}

func plannedStep(points []SchedulePoint, ts time.Time, i, steps int) float64 {
	if len(points) == 0 {
		return Round1(float64(i) * 100 / float64(steps))
	}
	value := 0.0
	for _, pt := range points {
		if pt.Date.Time().After(ts) {
			break
		}
		value = pt.Progress
	}
	return value
}

type datedLog struct {
	date  time.Time
	value float64
}

// datedLogs 过滤出日期有效且填写了实际进度的日志，保持调用方顺序
func datedLogs(entries []LogEntry) []datedLog {
	out := make([]datedLog, 0, len(entries))
	for _, e := range entries {
		if e.Date.IsZero() || e.ActualProgress == nil {
			continue
		}
		out = append(out, datedLog{date: e.Date.Time(), value: parseProgress(*e.ActualProgress)})
	}
	return out
}

func actualAt(logs []datedLog, ts, clock time.Time, i int) *float64 {
	if ts.After(clock) {
		return nil
	}

	found := false
	var best datedLog
	for _, l := range logs {
		if l.date.After(ts) {
			continue
		}
		// 同日期取列表中靠前的一条
		if !found || l.date.After(best.date) {
			best = l
			found = true
		}
	}
	if found {
		v := best.value
		return &v
	}
	if i == 0 || len(logs) > 0 {
		zero := 0.0
		return &zero
	}
	return nil
}
