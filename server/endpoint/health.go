package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       component.HealthStatus `json:"status"`
	Service      string                 `json:"service"`
	Version      string                 `json:"version"`
	Timestamp    string                 `json:"timestamp"`
	Dependencies map[string]string      `json:"dependencies"`
	Components   []component.Health     `json:"components,omitempty"`
}

// Health reports the service status and the status of each backend. An
// unhealthy backend answers 503 so load balancers stop routing uploads.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}

		deps := make(map[string]string, len(components))
		for _, h := range components {
			deps[h.Name] = string(h.Status)
		}
		status := component.Overall(components)

		httpStatus := http.StatusOK
		if status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, HealthResponse{
			Status:       status,
			Service:      serviceName,
			Version:      version.Get().Version,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Dependencies: deps,
			Components:   components,
		})
	}
}
