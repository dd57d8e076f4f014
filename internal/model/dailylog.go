package model

import (
	"time"

	"sitelog/internal/schedule"
)

// DailyLog 施工日志
type DailyLog struct {
	ID             int       `json:"id"`
	ProjectID      int       `json:"project_id"`
	Date           string    `json:"date"`
	Weather        string    `json:"weather"`
	Temperature    string    `json:"temperature"`
	WorkItems      string    `json:"work_items"`
	WorkerCount    int       `json:"worker_count"`
	Machinery      string    `json:"machinery"`
	Notes          string    `json:"notes"`
	ActualProgress *string   `json:"actual_progress"` // 原样保存填报字符串
	Reporter       string    `json:"reporter"`
	PhotoURLs      []string  `json:"photo_urls"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToEntry 转换为进度引擎的日志条目
func (l *DailyLog) ToEntry() schedule.LogEntry {
	return schedule.LogEntry{
		Date:           schedule.ParseDate(l.Date),
		ActualProgress: l.ActualProgress,
	}
}

// ToEntries 保持输入顺序（新到旧）
func ToEntries(logs []DailyLog) []schedule.LogEntry {
	out := make([]schedule.LogEntry, 0, len(logs))
	for i := range logs {
		out = append(out, logs[i].ToEntry())
	}
	return out
}
