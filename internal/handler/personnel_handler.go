package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/service"
)

type PersonnelHandler struct {
	personnel *service.PersonnelService
	logger    *zap.Logger
}

func NewPersonnelHandler(personnel *service.PersonnelService, logger *zap.Logger) *PersonnelHandler {
	return &PersonnelHandler{personnel: personnel, logger: logger}
}

// List GET /projects/:id/personnel?active=true
func (h *PersonnelHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	people, err := h.personnel.ListByProject(c.Request.Context(), projectID, c.Query("active") == "true")
	if err != nil {
		respondError(c, h.logger, "list personnel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"personnel": people})
}

func (h *PersonnelHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.PersonnelInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.personnel.Create(c.Request.Context(), projectID, in)
	if err != nil {
		respondError(c, h.logger, "create personnel", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PersonnelHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in service.PersonnelInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.personnel.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "update personnel", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PersonnelHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.personnel.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete personnel", err)
		return
	}
	c.Status(http.StatusNoContent)
}
