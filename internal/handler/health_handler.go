package handler

import (
	"context"
	"net/http"
	"os/exec"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db    Pinger
	tools []string
}

// NewHealthHandler creates a HealthHandler. db may be nil when the service
// runs without persistence. tools are external binaries the extraction
// pipeline shells out to; a missing one degrades readiness without failing it.
func NewHealthHandler(db Pinger, tools ...string) *HealthHandler {
	return &HealthHandler{db: db, tools: tools}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}

	var missing []string
	for _, tool := range h.tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "missing_tools": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
