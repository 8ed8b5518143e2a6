package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// MetricsService owns the Prometheus registry. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	storageFallback *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	codeChecks      *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	storageFallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_storage_fallback_total",
		Help: "Storage calls served by fixtures or simulated",
	}, []string{"operation", "reason"})

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_registrations_total",
		Help: "Registration submissions by outcome",
	}, []string{"outcome"})

	codeChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_code_checks_total",
		Help: "Duplicate code checks by result",
	}, []string{"result"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_notifications_total",
		Help: "Notification emails by status",
	}, []string{"status"})

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forum_rate_limited_total",
		Help: "Submissions rejected by the rate limiter",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		storageFallback, registrations, codeChecks, notifications, rateLimited, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		storageFallback: storageFallback,
		registrations:   registrations,
		codeChecks:      codeChecks,
		notifications:   notifications,
		rateLimited:     rateLimited,
	}
}

func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStorageFallback implements gateway.FallbackObserver.
func (m *MetricsService) ObserveStorageFallback(operation, reason string) {
	if m == nil {
		return
	}
	m.storageFallback.WithLabelValues(operation, reason).Inc()
}

// ObserveRegistration counts submissions: created, invalid, conflict or error.
func (m *MetricsService) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *MetricsService) ObserveCodeCheck(result string) {
	if m == nil {
		return
	}
	m.codeChecks.WithLabelValues(result).Inc()
}

func (m *MetricsService) ObserveNotification(status models.NotificationStatus) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(status)).Inc()
}

func (m *MetricsService) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
