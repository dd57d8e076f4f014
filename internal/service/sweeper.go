package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
)

// ProjectLister 由 *repository.ProjectRepository 实现
type ProjectLister interface {
	List(ctx context.Context, status string) ([]model.Project, error)
}

// AlertEvaluator 由 *AlertService 实现
type AlertEvaluator interface {
	Evaluate(ctx context.Context, projectID int) (*mqcontracts.ProgressAlertPayload, error)
}

// ProgressSweeper 定时重新评估所有进行中的工程
// 逾期只随时间推移发生，不会有事件触发，需要靠巡检发现
type ProgressSweeper struct {
	projects ProjectLister
	alerts   AlertEvaluator
	logger   *zap.Logger
}

func NewProgressSweeper(projects ProjectLister, alerts AlertEvaluator, logger *zap.Logger) *ProgressSweeper {
	return &ProgressSweeper{projects: projects, alerts: alerts, logger: logger}
}

// SweepOnce 单个工程失败不影响其他工程，返回评估数与新发预警数
func (s *ProgressSweeper) SweepOnce(ctx context.Context) (evaluated, raised int, err error) {
	projects, err := s.projects.List(ctx, model.ProjectStatusActive)
	if err != nil {
		s.logger.Error("Failed to list active projects", zap.Error(err))
		return 0, 0, err
	}

	for _, p := range projects {
		if ctx.Err() != nil {
			return evaluated, raised, ctx.Err()
		}
		alert, err := s.alerts.Evaluate(ctx, p.ID)
		if err != nil {
			s.logger.Error("Progress sweep failed for project",
				zap.Int("project_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		evaluated++
		if alert != nil {
			raised++
		}
	}

	s.logger.Info("Progress sweep completed",
		zap.Int("total_projects", len(projects)),
		zap.Int("evaluated", evaluated),
		zap.Int("alerts_raised", raised),
	)
	return evaluated, raised, nil
}

// Run 启动时立即执行一次，之后按 interval 执行，直到 ctx 取消
func (s *ProgressSweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_, _, _ = s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Progress sweeper stopped")
			return
		case <-ticker.C:
			_, _, _ = s.SweepOnce(ctx)
		}
	}
}
