package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

func newConfigurationRepoMock(t *testing.T) (*ConfigurationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewConfigurationRepository(sqlxDB), mock, func() { db.Close() }
}

func TestConfigurationRepositoryGet(t *testing.T) {
	repo, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()

	updated := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email_notification", "updated_at"}).
		AddRow(models.ConfigurationID, "rh@forum.local", updated)
	mock.ExpectQuery("SELECT id, email_notification").WithArgs(models.ConfigurationID).WillReturnRows(rows)

	cfg, err := repo.GetConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rh@forum.local", cfg.NotificationEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepositorySaveNotificationEmail(t *testing.T) {
	repo, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(models.ConfigurationID, "new@forum.local", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveNotificationEmail(context.Background(), "new@forum.local"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreExposesBothRepositories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(sqlx.NewDb(db, "postgres"))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("X1234567").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := store.ExistsByCode(context.Background(), "X1234567")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheAndRateLimitWithoutClient(t *testing.T) {
	cache := NewCacheRepository(nil, "forum", nil)
	var out []string
	assert.Error(t, cache.Get(context.Background(), "k", &out))
	assert.NoError(t, cache.Set(context.Background(), "k", []string{"v"}, time.Minute))
	assert.NoError(t, cache.DeleteByPattern(context.Background(), "*"))
	assert.False(t, cache.Enabled())

	limiter := NewRateLimitRepository(nil, "rl:")
	count, ttl, err := limiter.Hit(context.Background(), "1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, ttl)
}
