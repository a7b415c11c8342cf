package middleware

import (
	"strings"

	"unilink/services/admin"
	"unilink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminCookieName is the cookie carrying the admin token.
const AdminCookieName = "admin_session"

// AdminToken reads the admin token from the session cookie, falling back to
// a bearer Authorization header for scripted access.
func AdminToken(c *gin.Context) string {
	if token, err := c.Cookie(AdminCookieName); err == nil && token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// AdminAuthMiddleware lets requests through only with a live admin
// session. When no admin password is configured the gate stays open.
func AdminAuthMiddleware(svc admin.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.Configured() {
			c.Next()
			return
		}

		sess, err := svc.Validate(c.Request.Context(), AdminToken(c))
		if err != nil {
			if !utils.IsKind(err, utils.KindUnauthorized) {
				zap.L().Error("Admin session check failed", zap.Error(err))
			}
			utils.RespondError(c, err, "Unauthorized")
			c.Abort()
			return
		}

		c.Set("adminSessionID", sess.ID)
		c.Next()
	}
}
