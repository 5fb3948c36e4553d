package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/hotelmatch/internal/middleware"
	"github.com/stwalsh4118/hotelmatch/internal/services"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for warehouse health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger checks a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusReporter reports what the review service has loaded.
type StatusReporter interface {
	Status() services.Status
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	warehouse Pinger
	review    StatusReporter
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(warehouse Pinger, review StatusReporter, env string) *HealthHandler {
	return &HealthHandler{
		warehouse: warehouse,
		review:    review,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Session  string `json:"session"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Uptime      string          `json:"uptime"`
	Review      services.Status `json:"review"`
}

// Health handles GET /health. It is a liveness probe and checks nothing.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready.
// Ready means the warehouse answers and a review session is loaded.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Database: "connected", Session: "loaded"}
	status := http.StatusOK

	if err := h.warehouse.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Warehouse health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}
		resp.Status, resp.Database = "not_ready", "disconnected"
		status = http.StatusServiceUnavailable
	}

	if !h.review.Status().Ready {
		resp.Status, resp.Session = "not_ready", "not_loaded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
		Review:      h.review.Status(),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
