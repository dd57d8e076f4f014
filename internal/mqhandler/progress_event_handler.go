package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/pkg/logger"
	"sitelog/pkg/util"
)

// Evaluator 由 *service.AlertService 实现
type Evaluator interface {
	Evaluate(ctx context.Context, projectID int) (*mqcontracts.ProgressAlertPayload, error)
}

// ProgressEventHandler 处理日志新增、进度表导入、展延变更，重新评估进度
type ProgressEventHandler struct {
	alerts Evaluator
	logger *zap.Logger
}

func NewProgressEventHandler(alerts Evaluator, logger *zap.Logger) *ProgressEventHandler {
	return &ProgressEventHandler{alerts: alerts, logger: logger}
}

func (h *ProgressEventHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ProjectEventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ProjectEventPayload", zap.Error(err))
		return util.Permanent(err)
	}
	if p.ProjectID <= 0 {
		return util.Permanent(fmt.Errorf("invalid project_id: %d", p.ProjectID))
	}

	log := logger.WithTrace(ctx, h.logger)
	log.Info("Re-evaluating project progress", zap.Int("project_id", p.ProjectID))

	alert, err := h.alerts.Evaluate(ctx, p.ProjectID)
	if err != nil {
		// 工程已删除时重试没有意义
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidInput) {
			return util.Permanent(err)
		}
		return err
	}
	if alert != nil {
		log.Info("Progress alert raised",
			zap.Int("project_id", p.ProjectID),
			zap.String("kind", alert.Kind),
		)
	}
	return nil
}
