package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-inscriptions-api/internal/service"
)

type cachePinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// SystemHandler exposes probes and metrics.
type SystemHandler struct {
	metrics     *service.MetricsService
	storageMode func() string
	cache       cachePinger
	emailMode   string
}

func NewSystemHandler(metrics *service.MetricsService, storageMode func() string, cache cachePinger, emailMode string) *SystemHandler {
	return &SystemHandler{metrics: metrics, storageMode: storageMode, cache: cache, emailMode: emailMode}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *SystemHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports the storage, cache and email modes. Simulation still
// counts as ready.
func (h *SystemHandler) Ready(c *gin.Context) {
	storage := "simulated"
	if h.storageMode != nil {
		storage = h.storageMode()
	}
	cache := "disabled"
	if h.cache != nil && h.cache.Enabled() {
		cache = "up"
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			cache = "down"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"storage": storage,
		"cache":   cache,
		"email":   h.emailMode,
	})
}
