package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/internal/schedule"
	"sitelog/pkg/logger"
	"sitelog/pkg/metrics"
)

// LogLister 按工程读取日志，新到旧
type LogLister interface {
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error)
}

// ProgressReport 工程进度快照
type ProgressReport struct {
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	schedule.Snapshot
	// 日期无法解析而被忽略的计划检查点
	DroppedPoints int `json:"dropped_points"`
}

// ProgressService 把存储记录转换为引擎输入并计算进度；now 在每次计算时只取一次
type ProgressService struct {
	projects     ProjectGetter
	logs         LogLister
	logger       *zap.Logger
	now          func() time.Time
	defaultSteps int
}

func NewProgressService(projects ProjectGetter, logs LogLister, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		projects:     projects,
		logs:         logs,
		logger:       logger,
		now:          time.Now,
		defaultSteps: schedule.DefaultSCurveSteps,
	}
}

// WithClock 注入时钟；loc 非空时 "今天" 按该时区计算
func (s *ProgressService) WithClock(now func() time.Time, loc *time.Location) *ProgressService {
	if now == nil {
		now = time.Now
	}
	if loc != nil {
		inner := now
		now = func() time.Time { return inner().In(loc) }
	}
	s.now = now
	return s
}

func (s *ProgressService) WithDefaultSteps(steps int) *ProgressService {
	if steps > 0 {
		s.defaultSteps = steps
	}
	return s
}

func (s *ProgressService) load(ctx context.Context, projectID int) (*model.Project, schedule.Project, []schedule.LogEntry, int, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, schedule.Project{}, nil, 0, err
	}
	logs, err := s.logs.ListByProject(ctx, projectID, 0)
	if err != nil {
		return nil, schedule.Project{}, nil, 0, err
	}

	sp, dropped := p.ToSchedule()
	if dropped > 0 {
		logger.WithTrace(ctx, s.logger).Warn("Ignored schedule points with bad dates",
			zap.Int("project_id", projectID),
			zap.Int("dropped", dropped),
		)
	}
	return p, sp, model.ToEntries(logs), dropped, nil
}

func (s *ProgressService) Snapshot(ctx context.Context, projectID int) (*ProgressReport, error) {
	p, sp, entries, dropped, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snap := schedule.Evaluate(sp, entries, s.now())
	metrics.IncrementProgressEvaluation(string(snap.Status))

	return &ProgressReport{
		ProjectID:     p.ID,
		Name:          p.Name,
		Snapshot:      snap,
		DroppedPoints: dropped,
	}, nil
}

// SCurve steps <= 0 使用配置的默认分段数
func (s *ProgressService) SCurve(ctx context.Context, projectID int, steps int) (*schedule.SCurve, error) {
	if steps <= 0 {
		steps = s.defaultSteps
	}
	if steps > 366 {
		return nil, invalid("steps must be at most 366")
	}
	_, sp, entries, _, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	curve := schedule.BuildSCurve(sp, entries, s.now(), steps)
	return &curve, nil
}
