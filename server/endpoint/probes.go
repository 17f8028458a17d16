package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/component"
)

// ProbeResponse is the body of /alive and /ready.
type ProbeResponse struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Timestamp string   `json:"timestamp"`
	Waiting   []string `json:"waiting,omitempty"`
}

// Liveness answers 200 while the process can serve HTTP at all.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, probe("alive", serviceName, nil))
	}
}

// Readiness answers 503 while a model backend is unhealthy and lists the
// backends it is waiting for. A degraded summary backend does not block
// readiness.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var waiting []string
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == component.StatusUnhealthy {
					waiting = append(waiting, h.Name)
				}
			}
		}
		if len(waiting) > 0 {
			c.JSON(http.StatusServiceUnavailable, probe("not_ready", serviceName, waiting))
			return
		}
		c.JSON(http.StatusOK, probe("ready", serviceName, nil))
	}
}

func probe(status, service string, waiting []string) ProbeResponse {
	return ProbeResponse{
		Status:    status,
		Service:   service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Waiting:   waiting,
	}
}
