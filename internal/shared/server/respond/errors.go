package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-reviewer/internal/shared/telemetry"
)

// Text sends a plain-text error response and records it in the operational log.
// message is returned to the caller verbatim and must not carry internal detail.
func Text(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.Abort()
	c.String(status, message)
}
