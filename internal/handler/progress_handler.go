package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/internal/service"
)

// AlertLister 由 *repository.AlertRepository 实现
type AlertLister interface {
	ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error)
}

type ProgressHandler struct {
	progress *service.ProgressService
	alerts   AlertLister
	logger   *zap.Logger
}

func NewProgressHandler(progress *service.ProgressService, alerts AlertLister, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, alerts: alerts, logger: logger}
}

// Progress GET /projects/:id/progress；未知值输出 null
func (h *ProgressHandler) Progress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.progress.Snapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "evaluate progress", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SCurve GET /projects/:id/scurve?steps=N
func (h *ProgressHandler) SCurve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	steps, ok := queryInt(c, "steps", 0)
	if !ok {
		return
	}
	curve, err := h.progress.SCurve(c.Request.Context(), id, steps)
	if err != nil {
		respondError(c, h.logger, "build s-curve", err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// Alerts GET /projects/:id/alerts?limit=N
func (h *ProgressHandler) Alerts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	alerts, err := h.alerts.ListByProject(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.logger, "list alerts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
