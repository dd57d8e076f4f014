package schedule

// SchedulePoint 管理员设定的计划进度检查点
type SchedulePoint struct {
	Date     Date    `json:"date"`
	Progress float64 `json:"progress"`
}

// Extension 已核准的工期展延
type Extension struct {
	ID        string `json:"id"`
	Days      int    `json:"days"`
	Date      Date   `json:"date"`
	DocNumber string `json:"doc_number"`
	Reason    string `json:"reason"`
}

// Project 进度计算所需的工程字段
// StartDate 为零值表示缺失；ContractDuration 缺失时按 0 处理
type Project struct {
	StartDate        Date            `json:"start_date"`
	ContractDuration int             `json:"contract_duration"`
	Extensions       []Extension     `json:"extensions"`
	ScheduleData     []SchedulePoint `json:"schedule_data"`
}

// LogEntry 施工日志中的一次实际进度填报
// ActualProgress 为 nil 表示该日志未填写实际进度
type LogEntry struct {
	Date           Date    `json:"date"`
	ActualProgress *string `json:"actual_progress"`
}

// ExtensionDays 展延天数合计
func (p Project) ExtensionDays() int {
	total := 0
	for _, e := range p.Extensions {
		total += e.Days
	}
	return total
}
