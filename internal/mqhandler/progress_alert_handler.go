package mqhandler

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/pkg/logger"
	"sitelog/pkg/util"
)

// AlertPersister 由 *service.AlertService 实现
type AlertPersister interface {
	Persist(ctx context.Context, p mqcontracts.ProgressAlertPayload) (*model.ProgressAlert, error)
}

// ProgressAlertHandler 把 progress.alert 落库，供前端查询
type ProgressAlertHandler struct {
	alerts AlertPersister
	logger *zap.Logger
}

func NewProgressAlertHandler(alerts AlertPersister, logger *zap.Logger) *ProgressAlertHandler {
	return &ProgressAlertHandler{alerts: alerts, logger: logger}
}

func (h *ProgressAlertHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ProgressAlertPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ProgressAlertPayload", zap.Error(err))
		return util.Permanent(err)
	}

	a, err := h.alerts.Persist(ctx, p)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			return util.Permanent(err)
		}
		logger.WithTrace(ctx, h.logger).Error("Failed to persist progress alert",
			zap.Int("project_id", p.ProjectID),
			zap.String("kind", p.Kind),
			zap.Error(err),
		)
		return err
	}

	logger.WithTrace(ctx, h.logger).Info("Progress alert stored",
		zap.Int("alert_id", a.ID),
		zap.Int("project_id", p.ProjectID),
		zap.String("kind", p.Kind),
		zap.String("date", p.Date),
	)
	return nil
}
