package schedule

import (
	"encoding/json"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date 日历日期（UTC 零点），零值表示未知
type Date struct {
	t time.Time
}

// NewDate 由年月日构造日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 取 t 在其自身时区下的日历日
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate 解析 YYYY-MM-DD 或 YYYY/MM/DD，失败返回零值
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	s = strings.ReplaceAll(s, "/", "-")
	// 兼容带时间部分的值，例如 2026-01-05T08:00:00
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return Date{}
	}
	return Date{t: t}
}

// IsZero 是否为未知日期
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time 返回 UTC 零点时间
func (d Date) Time() time.Time {
	return d.t
}

// AddDays 加减天数；未知日期保持未知
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

const secondsPerDay = 24 * 60 * 60

// DaysSince 返回 d - o 的天数
// 按 Unix 秒相减，跨度超过 time.Duration 上限（约 292 年）时也不会饱和
func (d Date) DaysSince(o Date) int {
	return int((d.t.Unix() - o.t.Unix()) / secondsPerDay)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON 未知日期编码为 null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON 无法解析的值解码为未知日期，不返回错误
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil || s == nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(*s)
	return nil
}
