package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitelog/internal/handler"
	"sitelog/pkg/logger"
	"sitelog/pkg/metrics"
	"sitelog/pkg/rbac"
	"sitelog/pkg/trace"
)

// RequestLogger 注入 trace_id，记录请求日志和耗时指标
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		ctx := c.Request.Context()
		if id := c.GetHeader(trace.HeaderName); id != "" {
			ctx = trace.WithContext(ctx, id)
		}
		ctx, traceID := trace.Ensure(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName, traceID)

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), latency)

		logger.WithTrace(ctx, log).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// Identity 从网关注入的请求头读取用户，缺省角色为 viewer
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(handler.ContextUserID, c.GetHeader(handler.HeaderUserID))
		c.Set(handler.ContextRole, rbac.NormalizeRole(c.GetHeader(handler.HeaderUserRole)))
		c.Next()
	}
}
