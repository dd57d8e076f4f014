package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/service"
)

type DailyLogHandler struct {
	logs   *service.DailyLogService
	logger *zap.Logger
}

func NewDailyLogHandler(logs *service.DailyLogService, logger *zap.Logger) *DailyLogHandler {
	return &DailyLogHandler{logs: logs, logger: logger}
}

// List GET /projects/:id/logs?limit=N，新到旧
func (h *DailyLogHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	logs, err := h.logs.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		respondError(c, h.logger, "list daily logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *DailyLogHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.DailyLogInput
	if !bindJSON(c, &in) {
		return
	}
	if in.Reporter == "" {
		in.Reporter = c.GetString(ContextUserID)
	}
	l, err := h.logs.Create(c.Request.Context(), projectID, in)
	if err != nil {
		respondError(c, h.logger, "create daily log", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *DailyLogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := h.logs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get daily log", err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *DailyLogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.logs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete daily log", err)
		return
	}
	c.Status(http.StatusNoContent)
}
