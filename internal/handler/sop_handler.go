package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/internal/service"
)

type SOPHandler struct {
	sops   *service.SOPService
	logger *zap.Logger
}

func NewSOPHandler(sops *service.SOPService, logger *zap.Logger) *SOPHandler {
	return &SOPHandler{sops: sops, logger: logger}
}

// List GET /sops?category=xxx
func (h *SOPHandler) List(c *gin.Context) {
	docs, err := h.sops.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, h.logger, "list sops", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sops": docs})
}

func (h *SOPHandler) Create(c *gin.Context) {
	var in struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Version     string `json:"version"`
		FileURL     string `json:"file_url"`
		Description string `json:"description"`
	}
	if !bindJSON(c, &in) {
		return
	}
	doc, err := h.sops.Create(c.Request.Context(), &model.SOPDocument{
		Title:       in.Title,
		Category:    in.Category,
		Version:     in.Version,
		FileURL:     in.FileURL,
		Description: in.Description,
	})
	if err != nil {
		respondError(c, h.logger, "create sop", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *SOPHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.sops.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get sop", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *SOPHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sops.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete sop", err)
		return
	}
	c.Status(http.StatusNoContent)
}
