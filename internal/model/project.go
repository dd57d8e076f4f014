package model

import (
	"time"

	"sitelog/internal/schedule"
)

// Project 工程主档；可选字段用指针，新建时可以缺省
type Project struct {
	ID               int                   `json:"id"`
	Name             string                `json:"name"`
	Location         string                `json:"location"`
	Contractor       string                `json:"contractor"`
	Supervisor       string                `json:"supervisor"`
	StartDate        *string               `json:"start_date"`
	ContractDuration *int                  `json:"contract_duration"`
	ContractAmount   *float64              `json:"contract_amount"`
	Status           string                `json:"status"` // active / suspended / closed
	Extensions       []Extension           `json:"extensions"`
	ScheduleData     []SchedulePointRecord `json:"schedule_data"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// SchedulePointRecord 导入的计划进度检查点（原始字符串日期）
type SchedulePointRecord struct {
	Date     string  `json:"date"`
	Progress float64 `json:"progress"`
}

// Extension 工期展延记录
type Extension struct {
	ID        string `json:"id"`
	Days      int    `json:"days"`
	Date      string `json:"date"`
	DocNumber string `json:"doc_number"`
	Reason    string `json:"reason"`
}

const (
	ProjectStatusActive    = "active"
	ProjectStatusSuspended = "suspended"
	ProjectStatusClosed    = "closed"
)

// ToSchedule 转换为进度引擎的输入，日期在这里统一归一化
// 日期无法解析的检查点被丢弃，dropped 返回丢弃数量
func (p *Project) ToSchedule() (sp schedule.Project, dropped int) {
	if p.StartDate != nil {
		sp.StartDate = schedule.ParseDate(*p.StartDate)
	}
	if p.ContractDuration != nil {
		sp.ContractDuration = *p.ContractDuration
	}

	sp.Extensions = make([]schedule.Extension, 0, len(p.Extensions))
	for _, e := range p.Extensions {
		sp.Extensions = append(sp.Extensions, schedule.Extension{
			ID:        e.ID,
			Days:      e.Days,
			Date:      schedule.ParseDate(e.Date),
			DocNumber: e.DocNumber,
			Reason:    e.Reason,
		})
	}

	sp.ScheduleData = make([]schedule.SchedulePoint, 0, len(p.ScheduleData))
	for _, pt := range p.ScheduleData {
		date := schedule.ParseDate(pt.Date)
		if date.IsZero() {
			dropped++
			continue
		}
		sp.ScheduleData = append(sp.ScheduleData, schedule.SchedulePoint{Date: date, Progress: pt.Progress})
	}
	return sp, dropped
}
