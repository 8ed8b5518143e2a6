package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

type remoteStub struct {
	records    []models.Inscription
	exists     bool
	listErr    error
	existsErr  error
	createErr  error
	updateErr  error
	deleteErr  error
	configErr  error
	saveErr    error
	config     *models.Configuration
	created    []*models.Inscription
	updates    map[string]models.StatusUpdate
	deleted    []string
	savedEmail string
}

func (r *remoteStub) List(ctx context.Context) ([]models.Inscription, error) {
	return r.records, r.listErr
}

func (r *remoteStub) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.exists, r.existsErr
}

func (r *remoteStub) Create(ctx context.Context, i *models.Inscription) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, i)
	return nil
}

func (r *remoteStub) UpdateStatus(ctx context.Context, id string, u models.StatusUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.updates == nil {
		r.updates = map[string]models.StatusUpdate{}
	}
	r.updates[id] = u
	return nil
}

func (r *remoteStub) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *remoteStub) GetConfiguration(ctx context.Context) (*models.Configuration, error) {
	return r.config, r.configErr
}

func (r *remoteStub) SaveNotificationEmail(ctx context.Context, email string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.savedEmail = email
	return nil
}

type observerStub struct{ ops []string }

func (o *observerStub) ObserveStorageFallback(op, reason string) {
	o.ops = append(o.ops, op+":"+reason)
}

func TestUnavailableServesFixturesAndSimulatesWrites(t *testing.T) {
	obs := &observerStub{}
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	g := New(nil, true, Options{Observer: obs, DefaultNotificationEmail: "admin@forum.local", Now: func() time.Time { return now }})
	ctx := context.Background()

	assert.False(t, g.Available())
	assert.Equal(t, ModeSimulated, g.Mode())

	records, err := g.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "8710320P", records[0].Code)

	taken, err := g.ExistsByCode(ctx, "9999999Z")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = g.ExistsByCode(ctx, "AB1")
	require.NoError(t, err)
	assert.False(t, taken)

	in := &models.Inscription{Code: "AB1"}
	require.NoError(t, g.Create(ctx, in))
	assert.NotEmpty(t, in.ID)
	assert.Equal(t, now, in.CreatedAt)

	assert.NoError(t, g.UpdateStatus(ctx, "1", models.StatusUpdate{Status: models.StatusAccepted}))
	assert.NoError(t, g.Delete(ctx, "1"))

	assert.Equal(t, "admin@forum.local", g.NotificationEmail(ctx))
	require.NoError(t, g.SaveNotificationEmail(ctx, "new@forum.local"))
	assert.Equal(t, "new@forum.local", g.NotificationEmail(ctx))

	assert.Contains(t, obs.ops, "list:unavailable")
	assert.Contains(t, obs.ops, "create:unavailable")
}

func TestFixturesAreFreshCopies(t *testing.T) {
	a := Fixtures()
	a[1].Status = models.StatusRefused
	*a[1].Comment = "changed"

	b := Fixtures()
	assert.Equal(t, models.StatusRequestSent, b[1].Status)
	assert.Equal(t, "Demande transmise au chef de service", *b[1].Comment)
}

func TestAvailableReadsFailOpen(t *testing.T) {
	obs := &observerStub{}
	remote := &remoteStub{listErr: errors.New("timeout"), configErr: errors.New("timeout")}
	g := New(remote, true, Options{Observer: obs, DefaultNotificationEmail: "fallback@forum.local"})

	records, err := g.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "fallback@forum.local", g.NotificationEmail(context.Background()))
	assert.Equal(t, []string{"list:error", "configuration:error"}, obs.ops)
}

func TestAvailableWritesFailVisibly(t *testing.T) {
	boom := errors.New("connection reset")
	remote := &remoteStub{createErr: boom, updateErr: boom, deleteErr: boom, saveErr: boom, existsErr: boom}
	g := New(remote, true, Options{DefaultNotificationEmail: "keep@forum.local"})
	ctx := context.Background()

	assert.ErrorIs(t, g.Create(ctx, &models.Inscription{Code: "AB1"}), boom)
	assert.ErrorIs(t, g.UpdateStatus(ctx, "1", models.StatusUpdate{}), boom)
	assert.ErrorIs(t, g.Delete(ctx, "1"), boom)
	assert.ErrorIs(t, g.SaveNotificationEmail(ctx, "x@forum.local"), boom)
	_, err := g.ExistsByCode(ctx, "AB1")
	assert.ErrorIs(t, err, boom)

	remote.configErr = boom
	assert.Equal(t, "keep@forum.local", g.NotificationEmail(ctx))
}

func TestAvailablePassesThrough(t *testing.T) {
	remote := &remoteStub{
		records: []models.Inscription{{ID: "a"}},
		exists:  true,
		config:  &models.Configuration{ID: models.ConfigurationID, NotificationEmail: "db@forum.local"},
	}
	g := New(remote, true, Options{})
	ctx := context.Background()

	records, err := g.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", records[0].ID)

	taken, err := g.ExistsByCode(ctx, "AB1")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, g.Create(ctx, &models.Inscription{Code: "AB2"}))
	assert.Len(t, remote.created, 1)
	assert.Equal(t, "db@forum.local", g.NotificationEmail(ctx))
	require.NoError(t, g.SaveNotificationEmail(ctx, "other@forum.local"))
	assert.Equal(t, "other@forum.local", remote.savedEmail)
	assert.Equal(t, ModeRemote, g.Mode())
}

func TestFetchReportsSource(t *testing.T) {
	remote := &remoteStub{records: []models.Inscription{{ID: "a"}}}
	g := New(remote, true, Options{})

	records, live := g.Fetch(context.Background())
	assert.True(t, live)
	assert.Len(t, records, 1)

	remote.listErr = errors.New("timeout")
	records, live = g.Fetch(context.Background())
	assert.False(t, live)
	assert.Len(t, records, 3)

	_, live = New(nil, true, Options{}).Fetch(context.Background())
	assert.False(t, live)
}
