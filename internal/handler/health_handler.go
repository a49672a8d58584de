package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	gatewayConfigured bool
	pingers           map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. pingers maps a dependency name to its check.
func NewHealthHandler(gatewayConfigured bool, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{gatewayConfigured: gatewayConfigured, pingers: pingers}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.gatewayConfigured {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "AI gateway not configured"})
		return
	}
	for name, p := range h.pingers {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: name + " not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
