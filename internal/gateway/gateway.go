// Package gateway fronts registration storage. It is built with an explicit
// availability flag: when storage is unavailable, reads serve the fixture
// dataset and writes succeed as logged no-ops. When storage is available
// but a call fails, reads still fall back to fixtures while writes return
// the error.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// Remote is the storage backend.
type Remote interface {
	List(ctx context.Context) ([]models.Inscription, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, inscription *models.Inscription) error
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error
	Delete(ctx context.Context, id string) error
	GetConfiguration(ctx context.Context) (*models.Configuration, error)
	SaveNotificationEmail(ctx context.Context, email string) error
}

// FallbackObserver counts reads served from fixtures and simulated writes.
type FallbackObserver interface {
	ObserveStorageFallback(operation, reason string)
}

// Mode names the storage mode reported by readiness checks.
type Mode string

const (
	ModeRemote    Mode = "remote"
	ModeSimulated Mode = "simulated"
)

type Gateway struct {
	remote    Remote
	available bool
	logger    *zap.Logger
	observer  FallbackObserver
	now       func() time.Time

	mu                sync.RWMutex
	notificationEmail string
}

type Options struct {
	Logger   *zap.Logger
	Observer FallbackObserver
	// DefaultNotificationEmail is returned when no configuration row can be read.
	DefaultNotificationEmail string
	Now                      func() time.Time
}

// New builds a gateway. available must be false when remote is nil.
func New(remote Remote, available bool, opts Options) *Gateway {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gateway{
		remote:            remote,
		available:         available && remote != nil,
		logger:            opts.Logger,
		observer:          opts.Observer,
		now:               opts.Now,
		notificationEmail: opts.DefaultNotificationEmail,
	}
}

func (g *Gateway) Available() bool {
	return g.available
}

func (g *Gateway) Mode() Mode {
	if g.available {
		return ModeRemote
	}
	return ModeSimulated
}

// List returns every inscription, newest first.
func (g *Gateway) List(ctx context.Context) ([]models.Inscription, error) {
	records, _ := g.Fetch(ctx)
	return records, nil
}

// Fetch is List that also reports whether the records came from storage
// rather than the fixture dataset.
func (g *Gateway) Fetch(ctx context.Context) ([]models.Inscription, bool) {
	if !g.available {
		g.fallback("list", "unavailable")
		return Fixtures(), false
	}
	records, err := g.remote.List(ctx)
	if err != nil {
		g.logger.Error("list inscriptions failed, serving fixtures", zap.Error(err))
		g.fallback("list", "error")
		return Fixtures(), false
	}
	return records, true
}

// ExistsByCode reports whether code is registered. Remote errors are
// returned so the caller can apply its own fail-open policy.
func (g *Gateway) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if !g.available {
		g.fallback("exists", "unavailable")
		for _, taken := range SimulatedTakenCodes {
			if taken == code {
				return true, nil
			}
		}
		return false, nil
	}
	return g.remote.ExistsByCode(ctx, code)
}

// Create persists a new inscription, filling ID and CreatedAt when the
// storage is simulated.
func (g *Gateway) Create(ctx context.Context, inscription *models.Inscription) error {
	if !g.available {
		if inscription.ID == "" {
			inscription.ID = uuid.NewString()
		}
		if inscription.CreatedAt.IsZero() {
			inscription.CreatedAt = g.now().UTC()
		}
		g.logger.Warn("storage unavailable, simulating insert", zap.String("code", inscription.Code))
		g.fallback("create", "unavailable")
		return nil
	}
	return g.remote.Create(ctx, inscription)
}

func (g *Gateway) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	if !g.available {
		g.logger.Warn("storage unavailable, simulating status update", zap.String("id", id))
		g.fallback("update_status", "unavailable")
		return nil
	}
	return g.remote.UpdateStatus(ctx, id, update)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	if !g.available {
		g.logger.Warn("storage unavailable, simulating delete", zap.String("id", id))
		g.fallback("delete", "unavailable")
		return nil
	}
	return g.remote.Delete(ctx, id)
}

// NotificationEmail returns the configured recipient of new-registration
// emails, falling back to the last known value on any read problem.
func (g *Gateway) NotificationEmail(ctx context.Context) string {
	if g.available {
		cfg, err := g.remote.GetConfiguration(ctx)
		if err == nil && cfg != nil && cfg.NotificationEmail != "" {
			g.mu.Lock()
			g.notificationEmail = cfg.NotificationEmail
			g.mu.Unlock()
			return cfg.NotificationEmail
		}
		if err != nil {
			g.logger.Warn("read configuration failed", zap.Error(err))
			g.fallback("configuration", "error")
		}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.notificationEmail
}

// SaveNotificationEmail stores the recipient. In simulated mode the value
// is kept in memory for the life of the process.
func (g *Gateway) SaveNotificationEmail(ctx context.Context, email string) error {
	if g.available {
		if err := g.remote.SaveNotificationEmail(ctx, email); err != nil {
			return err
		}
	} else {
		g.fallback("save_configuration", "unavailable")
	}
	g.mu.Lock()
	g.notificationEmail = email
	g.mu.Unlock()
	return nil
}

func (g *Gateway) fallback(op, reason string) {
	if g.observer != nil {
		g.observer.ObserveStorageFallback(op, reason)
	}
}
