package schedule

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Today 将评估时间归一到当地日历日零点
func Today(now time.Time) Date {
	return DateOf(now)
}

// PlannedCompletionDate 计划完工日 = 开工日 + 契约工期 + 展延天数 - 1
// 开工日未知时返回未知日期
func PlannedCompletionDate(p Project) Date {
	if p.StartDate.IsZero() {
		return Date{}
	}
	return p.StartDate.AddDays(p.ContractDuration + p.ExtensionDays() - 1)
}

// sortedPoints 按日期稳定排序，不修改输入；同日期保持原数组顺序
func sortedPoints(points []SchedulePoint) []SchedulePoint {
	out := make([]SchedulePoint, 0, len(points))
	for _, pt := range points {
		if pt.Date.IsZero() {
			continue
		}
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// EffectiveSchedule 在排序后的检查点两端补齐 (开工日, 0) 与 (完工日, 100)
// 同日期检查点不去重
func EffectiveSchedule(p Project, completion Date) []SchedulePoint {
	points := sortedPoints(p.ScheduleData)

	if !p.StartDate.IsZero() && (len(points) == 0 || !points[0].Date.Equal(p.StartDate)) {
		points = append([]SchedulePoint{{Date: p.StartDate, Progress: 0}}, points...)
	}
	if !completion.IsZero() && (len(points) == 0 || !points[len(points)-1].Date.Equal(completion)) {
		points = append(points, SchedulePoint{Date: completion, Progress: 100})
	}
	return points
}

// PlannedProgressAsOf 按已排序检查点线性插值计算 today 的计划进度
// 首点之前取首点值，末点之后取末点值，不做外推
func PlannedProgressAsOf(points []SchedulePoint, today Date) float64 {
	if len(points) == 0 {
		return 0
	}

	nextIdx := -1
	for i, pt := range points {
		if !pt.Date.Before(today) {
			nextIdx = i
			break
		}
	}

	switch nextIdx {
	case 0:
		return points[0].Progress
	case -1:
		return points[len(points)-1].Progress
	}

	p1, p2 := points[nextIdx-1], points[nextIdx]
	span := float64(p2.Date.DaysSince(p1.Date))
	if span <= 0 {
		return p2.Progress
	}
	elapsed := float64(today.DaysSince(p1.Date))
	return p1.Progress + (p2.Progress-p1.Progress)*elapsed/span
}

// Round1 四舍五入到一位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// parseProgress 解析进度字符串，无法解析时视为 0
func parseProgress(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// LatestActualProgress 返回第一条填写了实际进度的日志的值
// entries 由调用方按日期倒序提供；ok 为 false 表示尚无数据（区别于 0%）
func LatestActualProgress(entries []LogEntry) (value float64, ok bool) {
	for _, e := range entries {
		if e.ActualProgress == nil {
			continue
		}
		return parseProgress(*e.ActualProgress), true
	}
	return 0, false
}

// RemainingDays 距计划完工日的剩余天数，逾期为负数，不截断为 0
func RemainingDays(completion, today Date) (int, bool) {
	if completion.IsZero() || today.IsZero() {
		return 0, false
	}
	return completion.DaysSince(today), true
}
