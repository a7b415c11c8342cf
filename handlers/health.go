package handlers

import (
	"net/http"

	"unilink/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last dependency snapshot. It
// answers 200 even when a dependency is down, since booking reads fail open.
func HealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"status": "ok", "message": "Hi, I'm UniLink"}
		if monitor != nil {
			st := monitor.Status()
			if !st.CheckedAt.IsZero() && !st.Healthy {
				resp["status"] = "degraded"
			}
			resp["dependencies"] = st
		}
		c.JSON(http.StatusOK, resp)
	}
}
