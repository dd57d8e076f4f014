package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/internal/service"
)

// 进度表文件上限
const maxScheduleUpload = 5 << 20

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// GET /projects?status=active
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, "list projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var in service.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "create project", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "update project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete project", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportSchedule POST /projects/:id/schedule/import
// 接受 multipart 表单字段 "file"，或直接以 text/csv 作为请求体
func (h *ProjectHandler) ImportSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxScheduleUpload)

	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
			return
		}
		defer f.Close()
		src = f
	}

	res, err := h.projects.ImportSchedule(c.Request.Context(), id, src)
	if err != nil {
		respondError(c, h.logger, "import schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id":    id,
		"schedule_data": res.Points,
		"imported":      len(res.Points),
		"skipped":       res.Skipped,
	})
}

// SetSchedule PUT /projects/:id/schedule
func (h *ProjectHandler) SetSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body struct {
		ScheduleData []model.SchedulePointRecord `json:"schedule_data"`
	}
	if !bindJSON(c, &body) {
		return
	}
	points, err := h.projects.SetSchedule(c.Request.Context(), id, body.ScheduleData)
	if err != nil {
		respondError(c, h.logger, "set schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "schedule_data": points})
}

func (h *ProjectHandler) AddExtension(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.ExtensionInput
	if !bindJSON(c, &in) {
		return
	}
	ext, err := h.projects.AddExtension(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "add extension", err)
		return
	}
	c.JSON(http.StatusCreated, ext)
}

func (h *ProjectHandler) RemoveExtension(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.RemoveExtension(c.Request.Context(), id, c.Param("extId")); err != nil {
		respondError(c, h.logger, "remove extension", err)
		return
	}
	c.Status(http.StatusNoContent)
}
