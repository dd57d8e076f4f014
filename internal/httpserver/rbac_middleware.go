package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitelog/internal/handler"
	"sitelog/pkg/rbac"
)

// RequirePermission 中间件：要求当前角色具有指定权限
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(handler.ContextRole)
		if role == "" {
			role = rbac.NormalizeRole(c.GetHeader(handler.HeaderUserRole))
		}

		if err := rbac.CheckPermission(role, permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
