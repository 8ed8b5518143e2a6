package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/forum-inscriptions-api/api/swagger"
	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/gateway"
	"github.com/noah-isme/forum-inscriptions-api/internal/handler"
	"github.com/noah-isme/forum-inscriptions-api/internal/middleware"
	"github.com/noah-isme/forum-inscriptions-api/internal/notifier"
	"github.com/noah-isme/forum-inscriptions-api/internal/repository"
	"github.com/noah-isme/forum-inscriptions-api/internal/service"
	"github.com/noah-isme/forum-inscriptions-api/pkg/cache"
	"github.com/noah-isme/forum-inscriptions-api/pkg/config"
	"github.com/noah-isme/forum-inscriptions-api/pkg/database"
	"github.com/noah-isme/forum-inscriptions-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/forum-inscriptions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/forum-inscriptions-api/pkg/middleware/requestid"
)

// @title Forum Contractuels Inscriptions API
// @version 1.0.0
// @description Registration form and admin dashboard for the Forum Contractuels.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	gw := openGateway(ctx, cfg, metrics, logr)

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		if !errors.Is(err, cache.ErrDisabled) {
			logr.Warn("redis unavailable, running without cache and rate limit", zap.Error(err))
		}
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "forum", logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Redis.CacheTTL, logr, redisClient != nil)
	limiter := repository.NewRateLimitRepository(redisClient, "forum:ratelimit")

	dispatcher := notifier.NewDispatcher(notifier.NewSender(cfg.Email, logr), notifier.Options{
		Catalog:      cat,
		DashboardURL: cfg.Email.DashboardURL,
		Async:        cfg.Email.Async,
		Workers:      cfg.Email.Workers,
		Retries:      cfg.Email.Retries,
		RetryDelay:   2 * time.Second,
		Logger:       logr,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	emailMode := cfg.Email.Provider
	if dispatcher.Simulated() {
		emailMode = "simulated"
	}

	auth := service.NewAuthService(validate, logr, service.AuthConfig{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Secret:   cfg.Session.Secret,
		TTL:      cfg.Session.TTL,
		Issuer:   "forum-inscriptions-api",
	}, cat)
	registrations := service.NewRegistrationService(gw, dispatcher, cacheSvc, metrics, validate, cat, logr)
	admin := service.NewAdminService(gw, dispatcher, cacheSvc, validate, cat, logr)

	storageMode := func() string { return string(gw.Mode()) }

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metrics))
	}

	handler.Register(r, handler.Routes{
		APIPrefix:    cfg.APIPrefix,
		Registration: handler.NewRegistrationHandler(registrations, cat),
		Auth: handler.NewAuthHandler(auth, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Env == config.EnvProduction,
		}),
		Admin:   handler.NewAdminHandler(admin),
		System:  handler.NewSystemHandler(metrics, storageMode, cacheRepo, emailMode),
		Session: middleware.Session(auth, cfg.Session.CookieName),
		SubmitLimit: middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Max:     cfg.RateLimit.Max,
			Window:  cfg.RateLimit.Window,
			Message: cat.Messages.Admin.RateLimited,
			Metrics: metrics,
			Logger:  logr,
		}),
		Meta:          middleware.WithResponseMeta(storageMode),
		EnableMetrics: cfg.Metrics.Enabled,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("storage", storageMode()),
			zap.String("email", emailMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}

// openGateway connects to Postgres. Any failure, or DB_ENABLED=false,
// leaves the gateway in simulated mode for the life of the process.
func openGateway(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *gateway.Gateway {
	opts := gateway.Options{
		Logger:                   logr,
		Observer:                 metrics,
		DefaultNotificationEmail: cfg.Email.NotificationEmail,
	}
	if !cfg.Database.Enabled {
		logr.Warn("database disabled, running in simulated mode")
		return gateway.New(nil, false, opts)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Warn("database unavailable, running in simulated mode", zap.Error(err))
		return gateway.New(nil, false, opts)
	}
	return gateway.New(repository.NewStore(db), true, opts)
}
