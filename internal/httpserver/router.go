package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sitelog/internal/handler"
	"sitelog/pkg/otel"
	"sitelog/pkg/rbac"
)

// Pinger 由 *pgxpool.Pool 实现
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnChecker 由 *mq.Publisher 实现
type ConnChecker interface {
	IsConnected() bool
}

type Handlers struct {
	Projects  *handler.ProjectHandler
	Progress  *handler.ProgressHandler
	Logs      *handler.DailyLogHandler
	Personnel *handler.PersonnelHandler
	SOPs      *handler.SOPHandler
	Admin     *handler.AdminHandler
}

func NewRouter(h Handlers, logger *zap.Logger, db Pinger, publisher ConnChecker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otel.GinMiddleware())
	r.Use(RequestLogger(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if publisher != nil && !publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(Identity())

	projects := api.Group("/projects")
	{
		projects.GET("", h.Projects.List)
		projects.POST("", RequirePermission(rbac.PermissionProjectWrite), h.Projects.Create)
		projects.GET("/:id", h.Projects.Get)
		projects.PUT("/:id", RequirePermission(rbac.PermissionProjectWrite), h.Projects.Update)
		projects.DELETE("/:id", RequirePermission(rbac.PermissionProjectWrite), h.Projects.Delete)

		projects.POST("/:id/schedule/import", RequirePermission(rbac.PermissionScheduleImport), h.Projects.ImportSchedule)
		projects.PUT("/:id/schedule", RequirePermission(rbac.PermissionScheduleImport), h.Projects.SetSchedule)
		projects.POST("/:id/extensions", RequirePermission(rbac.PermissionExtensionWrite), h.Projects.AddExtension)
		projects.DELETE("/:id/extensions/:extId", RequirePermission(rbac.PermissionExtensionWrite), h.Projects.RemoveExtension)

		projects.GET("/:id/progress", h.Progress.Progress)
		projects.GET("/:id/scurve", h.Progress.SCurve)
		projects.GET("/:id/alerts", h.Progress.Alerts)

		projects.GET("/:id/logs", h.Logs.List)
		projects.POST("/:id/logs", RequirePermission(rbac.PermissionLogWrite), h.Logs.Create)

		projects.GET("/:id/personnel", h.Personnel.List)
		projects.POST("/:id/personnel", RequirePermission(rbac.PermissionPersonnelWrite), h.Personnel.Create)
	}

	api.GET("/logs/:id", h.Logs.Get)
	api.DELETE("/logs/:id", RequirePermission(rbac.PermissionLogWrite), h.Logs.Delete)

	api.PUT("/personnel/:id", RequirePermission(rbac.PermissionPersonnelWrite), h.Personnel.Update)
	api.DELETE("/personnel/:id", RequirePermission(rbac.PermissionPersonnelWrite), h.Personnel.Delete)

	sops := api.Group("/sops")
	{
		sops.GET("", h.SOPs.List)
		sops.POST("", RequirePermission(rbac.PermissionSOPWrite), h.SOPs.Create)
		sops.GET("/:id", h.SOPs.Get)
		sops.DELETE("/:id", RequirePermission(rbac.PermissionSOPWrite), h.SOPs.Delete)
	}

	admin := api.Group("/admin")
	admin.Use(RequirePermission(rbac.PermissionOutboxReplay))
	{
		admin.POST("/outbox/:id/replay", h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return r
}
