package handlers

import (
	"net/http"

	"blog-enhancer/internal/worker"

	"github.com/gin-gonic/gin"
)

// StatusReporter reports background worker state
type StatusReporter interface {
	GetStatus() worker.Status
}

// HealthHandler serves liveness and worker status
type HealthHandler struct {
	workers StatusReporter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(workers StatusReporter) *HealthHandler {
	return &HealthHandler{workers: workers}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "blog-enhancer",
	})
}

// WorkerStatus handles GET /api/worker/status
func (h *HealthHandler) WorkerStatus(c *gin.Context) {
	if h.workers == nil {
		c.JSON(http.StatusOK, gin.H{"worker_status": worker.Status{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"worker_status": h.workers.GetStatus(),
	})
}
