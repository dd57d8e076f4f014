package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sitelog/internal/model"
	"sitelog/internal/schedule"
)

// ErrNoRows 文件中没有可用的检查点
var ErrNoRows = errors.New("no schedule rows found")

var (
	dateKeywords     = []string{"date", "日期"}
	progressKeywords = []string{"progress", "planned", "percent", "进度", "進度", "%"}
)

// Result 导入结果；Points 用于整体替换工程的 schedule_data
type Result struct {
	Points  []model.SchedulePointRecord
	Skipped int
}

// ParseCSV 解析计划进度 CSV
// 首行若包含日期列和进度列关键字则视为表头，否则默认第 0 列为日期、第 1 列为进度
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")

	dateCol, progressCol := 0, 1
	if dc, pc, ok := detectHeader(rows[0]); ok {
		dateCol, progressCol = dc, pc
		rows = rows[1:]
	}

	res := &Result{Points: []model.SchedulePointRecord{}}
	for _, row := range rows {
		if dateCol >= len(row) || progressCol >= len(row) {
			res.Skipped++
			continue
		}
		date := schedule.ParseDate(row[dateCol])
		progress, ok := parsePercent(row[progressCol])
		if date.IsZero() || !ok {
			res.Skipped++
			continue
		}
		res.Points = append(res.Points, model.SchedulePointRecord{
			Date:     date.String(),
			Progress: progress,
		})
	}

	if len(res.Points) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}

func detectHeader(row []string) (dateCol, progressCol int, ok bool) {
	dateCol, progressCol = -1, -1
	for i, cell := range row {
		c := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case dateCol < 0 && containsAny(c, dateKeywords):
			dateCol = i
		case progressCol < 0 && containsAny(c, progressKeywords):
			progressCol = i
		}
	}
	return dateCol, progressCol, dateCol >= 0 && progressCol >= 0
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// parsePercent 支持 "45"、"45.5%"，结果截断到 [0, 100]
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, true
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}
