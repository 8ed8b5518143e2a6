package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/service"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
	"github.com/noah-isme/forum-inscriptions-api/pkg/response"
)

type rateLimiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Enabled() bool
}

type RateLimitConfig struct {
	Max     int
	Window  time.Duration
	Message string
	Metrics *service.MetricsService
	Logger  *zap.Logger
}

// RateLimit allows cfg.Max requests per client IP per window. It fails
// open when the limiter is disabled or errors.
func RateLimit(limiter rateLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil || !limiter.Enabled() || cfg.Max <= 0 {
			c.Next()
			return
		}
		count, ttl, err := limiter.Hit(c.Request.Context(), c.ClientIP(), cfg.Window)
		if err != nil {
			cfg.Logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		remaining := cfg.Max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if count > int64(cfg.Max) {
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			}
			cfg.Metrics.ObserveRateLimited()
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, cfg.Message))
			return
		}
		c.Next()
	}
}
