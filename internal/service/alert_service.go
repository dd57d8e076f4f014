package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/internal/schedule"
	"sitelog/pkg/logger"
	"sitelog/pkg/metrics"
	"sitelog/pkg/redis"
	"sitelog/pkg/trace"
)

// DefaultAlertThreshold 落后计划超过 5 个百分点发出预警
const DefaultAlertThreshold = 5.0

type Snapshotter interface {
	Snapshot(ctx context.Context, projectID int) (*ProgressReport, error)
}

// Deduper 由 *util.Deduper 实现
type Deduper interface {
	AcquireOnce(ctx context.Context, key string) bool
	Release(ctx context.Context, key string)
}

type Publisher interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

// AlertStore 由 *repository.AlertRepository 实现
type AlertStore interface {
	Insert(ctx context.Context, a *model.ProgressAlert) (bool, error)
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error)
}

type AlertService struct {
	progress  Snapshotter
	dedup     Deduper
	publisher Publisher
	alerts    AlertStore
	threshold float64
	logger    *zap.Logger
}

func NewAlertService(progress Snapshotter, dedup Deduper, publisher Publisher, alerts AlertStore, threshold float64, logger *zap.Logger) *AlertService {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	return &AlertService{
		progress:  progress,
		dedup:     dedup,
		publisher: publisher,
		alerts:    alerts,
		threshold: threshold,
		logger:    logger,
	}
}

// DecideAlert 超过计划完工日且未完成为 overrun；
// 有实际进度且落后计划达到 threshold 个百分点为 behind_schedule
func DecideAlert(s schedule.Snapshot, threshold float64) (string, bool) {
	completed := s.ActualProgress != nil && *s.ActualProgress >= 100
	if s.RemainingDays != nil && *s.RemainingDays < 0 && !completed {
		return model.AlertKindOverrun, true
	}
	if s.ActualProgress != nil && s.Variance != nil && !completed && *s.Variance <= -threshold {
		return model.AlertKindBehindSchedule, true
	}
	return "", false
}

// Evaluate 重新计算进度，需要预警时发布 progress.alert；同一工程同一天同一类型只发一次
func (s *AlertService) Evaluate(ctx context.Context, projectID int) (*mqcontracts.ProgressAlertPayload, error) {
	report, err := s.progress.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	kind, ok := DecideAlert(report.Snapshot, s.threshold)
	if !ok {
		return nil, nil
	}

	date := report.Today.String()
	key := redis.Key("alert", projectID, date, kind)
	if !s.dedup.AcquireOnce(ctx, key) {
		return nil, nil
	}

	payload := &mqcontracts.ProgressAlertPayload{
		ProjectID:       projectID,
		ProjectName:     report.Name,
		Kind:            kind,
		PlannedProgress: report.PlannedProgress,
		ActualProgress:  report.ActualProgress,
		RemainingDays:   report.RemainingDays,
		Message:         alertMessage(kind, report),
		Date:            date,
		TraceID:         trace.FromContext(ctx),
	}
	if err := s.publisher.PublishWithContext(ctx, mqcontracts.RoutingKeyProgressAlert, payload); err != nil {
		// 发布失败释放去重锁，消息重试时可以再次发出
		s.dedup.Release(ctx, key)
		return nil, fmt.Errorf("failed to publish progress alert: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Progress alert published",
		zap.Int("project_id", projectID),
		zap.String("kind", kind),
		zap.String("date", date),
	)
	return payload, nil
}

// Persist 保存预警；重复投递被唯一约束吸收
func (s *AlertService) Persist(ctx context.Context, p mqcontracts.ProgressAlertPayload) (*model.ProgressAlert, error) {
	if p.ProjectID <= 0 || p.Kind == "" || schedule.ParseDate(p.Date).IsZero() {
		return nil, invalid("malformed alert payload")
	}
	a := &model.ProgressAlert{
		ProjectID:       p.ProjectID,
		Kind:            p.Kind,
		Date:            p.Date,
		PlannedProgress: p.PlannedProgress,
		ActualProgress:  p.ActualProgress,
		RemainingDays:   p.RemainingDays,
		Message:         p.Message,
	}
	created, err := s.alerts.Insert(ctx, a)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.IncrementProgressAlert(p.Kind)
	}
	return a, nil
}

func (s *AlertService) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error) {
	return s.alerts.ListByProject(ctx, projectID, limit)
}

func alertMessage(kind string, r *ProgressReport) string {
	switch kind {
	case model.AlertKindOverrun:
		return fmt.Sprintf("%s 已超过计划完工日 %s %d 天，实际进度 %s",
			r.Name, r.PlannedCompletion.String(), -*r.RemainingDays, percent(r.ActualProgress))
	default:
		return fmt.Sprintf("%s 实际进度 %s 落后计划 %.1f%% 共 %.1f 个百分点",
			r.Name, percent(r.ActualProgress), r.PlannedProgress, -*r.Variance)
	}
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v)
}
