package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	"github.com/noah-isme/forum-inscriptions-api/pkg/jobs"
)

const jobTypeEmail = "email"

type Options struct {
	Catalog      *catalog.Catalog
	DashboardURL string
	// Async routes new-registration emails through a worker queue.
	Async      bool
	Workers    int
	Retries    int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Dispatcher renders catalog templates and hands them to a Sender.
type Dispatcher struct {
	sender       Sender
	catalog      *catalog.Catalog
	dashboardURL string
	queue        *jobs.Queue
	logger       *zap.Logger
}

func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if sender == nil {
		sender = NewSimulatedSender(opts.Logger)
	}
	d := &Dispatcher{
		sender:       sender,
		catalog:      opts.Catalog,
		dashboardURL: opts.DashboardURL,
		logger:       opts.Logger,
	}
	if opts.Async {
		d.queue = jobs.NewQueue("notifications", d.handle, jobs.QueueConfig{
			Workers:    opts.Workers,
			MaxRetries: opts.Retries,
			RetryDelay: opts.RetryDelay,
			Logger:     opts.Logger,
		})
	}
	return d
}

// Start launches the worker queue when dispatch is asynchronous.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.queue != nil {
		d.queue.Start(ctx)
	}
}

func (d *Dispatcher) Stop() {
	if d.queue != nil {
		d.queue.Stop()
	}
}

// Simulated reports whether no real provider is configured.
func (d *Dispatcher) Simulated() bool {
	_, ok := d.sender.(*SimulatedSender)
	return ok
}

// NotifyNewInscription emails recipient about a new registration. Failures
// are logged and reported in the returned status only.
func (d *Dispatcher) NotifyNewInscription(ctx context.Context, recipient string, inscription models.Inscription) models.NotificationStatus {
	if recipient == "" {
		return models.NotificationDisabled
	}
	msg, err := d.render(catalog.TemplateNewInscription, recipient, map[string]string{
		"nom_prenom":       inscription.FullName,
		"numero_cp":        inscription.Code,
		"lieu_affectation": inscription.Unit,
		"date_inscription": catalog.FormatDate(inscription.CreatedAt),
	})
	if err != nil {
		d.logger.Error("render notification failed", zap.Error(err))
		return models.NotificationFailed
	}

	if d.Simulated() {
		_ = d.sender.Send(ctx, msg)
		return models.NotificationSimulated
	}

	if d.queue != nil {
		err := d.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeEmail, Payload: msg})
		if err == nil {
			return models.NotificationQueued
		}
		if !errors.Is(err, jobs.ErrQueueFull) {
			d.logger.Warn("notification queue unavailable, sending inline", zap.Error(err))
		} else {
			d.logger.Warn("notification queue full, sending inline")
		}
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("new inscription email failed",
			zap.String("code", inscription.Code), zap.String("to", recipient), zap.Error(err))
		return models.NotificationFailed
	}
	return models.NotificationSent
}

// SendTest sends the test template synchronously.
func (d *Dispatcher) SendTest(ctx context.Context, recipient string) (models.NotificationStatus, error) {
	msg, err := d.render(catalog.TemplateTest, recipient, map[string]string{"email": recipient})
	if err != nil {
		return models.NotificationFailed, err
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return models.NotificationFailed, err
	}
	if d.Simulated() {
		return models.NotificationSimulated, nil
	}
	return models.NotificationSent, nil
}

func (d *Dispatcher) render(name, recipient string, data map[string]string) (Message, error) {
	data["dashboard_url"] = d.dashboardURL
	subject, body, err := d.catalog.Render(name, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       recipient,
		Subject:  subject,
		Body:     body,
		Metadata: map[string]string{"dashboard_url": d.dashboardURL},
	}, nil
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(Message)
	if !ok {
		d.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver %s: %w", job.ID, err)
	}
	d.logger.Info("notification delivered", zap.String("to", msg.To), zap.Int("attempt", job.Attempt+1))
	return nil
}
