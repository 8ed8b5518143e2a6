package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// ConfigurationRepository reads and writes the single configuration row.
type ConfigurationRepository struct {
	db *sqlx.DB
}

func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

func (r *ConfigurationRepository) GetConfiguration(ctx context.Context) (*models.Configuration, error) {
	const query = `SELECT id, email_notification, updated_at FROM configuration WHERE id = $1`
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, models.ConfigurationID); err != nil {
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	return &cfg, nil
}

// SaveNotificationEmail upserts the notification recipient.
func (r *ConfigurationRepository) SaveNotificationEmail(ctx context.Context, email string) error {
	const query = `INSERT INTO configuration (id, email_notification, updated_at)
VALUES (:id, :email_notification, :updated_at)
ON CONFLICT (id)
DO UPDATE SET email_notification = EXCLUDED.email_notification, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	cfg := models.Configuration{ID: models.ConfigurationID, NotificationEmail: email, UpdatedAt: &now}
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("save notification email: %w", err)
	}
	return nil
}
