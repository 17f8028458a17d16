package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Info reports build information, uptime and the effective processing
// settings passed in as settings (model, language, size limit).
func Info(serviceName string, settings map[string]any) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   serviceName,
			"build":     version.Get(),
			"settings":  settings,
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Version reports build version information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}

// Metrics serves h, normally the Prometheus scrape handler.
func Metrics(h http.Handler) gin.HandlerFunc {
	return gin.WrapH(h)
}
