package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/internal/repository"
	"sitelog/internal/schedule"
	"sitelog/pkg/logger"
	"sitelog/pkg/trace"
)

// DailyLogStore 由 *repository.DailyLogRepository 实现
type DailyLogStore interface {
	Create(ctx context.Context, l *model.DailyLog, event func(*model.DailyLog) *repository.Event) error
	GetByID(ctx context.Context, id int) (*model.DailyLog, error)
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error)
	Delete(ctx context.Context, id int) error
}

// ProjectGetter 只需要按 ID 读取工程的场景
type ProjectGetter interface {
	GetByID(ctx context.Context, id int) (*model.Project, error)
}

type DailyLogInput struct {
	Date           string   `json:"date"`
	Weather        string   `json:"weather"`
	Temperature    string   `json:"temperature"`
	WorkItems      string   `json:"work_items"`
	WorkerCount    int      `json:"worker_count"`
	Machinery      string   `json:"machinery"`
	Notes          string   `json:"notes"`
	ActualProgress *string  `json:"actual_progress"`
	Reporter       string   `json:"reporter"`
	PhotoURLs      []string `json:"photo_urls"`
}

type DailyLogService struct {
	logs     DailyLogStore
	projects ProjectGetter
	logger   *zap.Logger
}

func NewDailyLogService(logs DailyLogStore, projects ProjectGetter, logger *zap.Logger) *DailyLogService {
	return &DailyLogService{logs: logs, projects: projects, logger: logger}
}

// Create 日期归一化为 YYYY-MM-DD；actual_progress 原样保存，空白视为未填
func (s *DailyLogService) Create(ctx context.Context, projectID int, in DailyLogInput) (*model.DailyLog, error) {
	date := schedule.ParseDate(in.Date)
	if date.IsZero() {
		return nil, invalid("bad date %q", in.Date)
	}
	if in.WorkerCount < 0 {
		return nil, invalid("worker_count must not be negative")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	var actual *string
	if in.ActualProgress != nil && strings.TrimSpace(*in.ActualProgress) != "" {
		v := strings.TrimSpace(*in.ActualProgress)
		actual = &v
	}

	l := &model.DailyLog{
		ProjectID:      projectID,
		Date:           date.String(),
		Weather:        in.Weather,
		Temperature:    in.Temperature,
		WorkItems:      in.WorkItems,
		WorkerCount:    in.WorkerCount,
		Machinery:      in.Machinery,
		Notes:          in.Notes,
		ActualProgress: actual,
		Reporter:       in.Reporter,
		PhotoURLs:      in.PhotoURLs,
	}

	traceID := trace.FromContext(ctx)
	err := s.logs.Create(ctx, l, func(saved *model.DailyLog) *repository.Event {
		return &repository.Event{
			RoutingKey: mqcontracts.RoutingKeyDailyLogCreated,
			Payload: mqcontracts.DailyLogCreatedPayload{
				LogID:          saved.ID,
				ProjectID:      saved.ProjectID,
				Date:           saved.Date,
				ActualProgress: saved.ActualProgress,
				TraceID:        traceID,
			},
		}
	})
	if err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Daily log created",
		zap.Int("log_id", l.ID),
		zap.Int("project_id", projectID),
		zap.String("date", l.Date),
	)
	return l, nil
}

func (s *DailyLogService) Get(ctx context.Context, id int) (*model.DailyLog, error) {
	return s.logs.GetByID(ctx, id)
}

// ListByProject 新到旧
func (s *DailyLogService) ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.logs.ListByProject(ctx, projectID, limit)
}

func (s *DailyLogService) Delete(ctx context.Context, id int) error {
	return s.logs.Delete(ctx, id)
}
