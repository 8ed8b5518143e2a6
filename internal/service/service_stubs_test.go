package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/forum-inscriptions-api/internal/gateway"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

type gatewayStub struct {
	records    []models.Inscription
	live       bool
	fetches    int
	exists     bool
	existsErr  error
	createErr  error
	updateErr  error
	deleteErr  error
	saveErr    error
	email      string
	created    []models.Inscription
	updates    map[string]models.StatusUpdate
	deleted    []string
	savedEmail string
}

func (g *gatewayStub) Fetch(ctx context.Context) ([]models.Inscription, bool) {
	g.fetches++
	if g.records == nil {
		return gateway.Fixtures(), g.live
	}
	return g.records, g.live
}

func (g *gatewayStub) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return g.exists, g.existsErr
}

func (g *gatewayStub) Create(ctx context.Context, i *models.Inscription) error {
	if g.createErr != nil {
		return g.createErr
	}
	i.ID = "new-id"
	g.created = append(g.created, *i)
	return nil
}

func (g *gatewayStub) UpdateStatus(ctx context.Context, id string, u models.StatusUpdate) error {
	if g.updateErr != nil {
		return g.updateErr
	}
	if g.updates == nil {
		g.updates = map[string]models.StatusUpdate{}
	}
	g.updates[id] = u
	return nil
}

func (g *gatewayStub) Delete(ctx context.Context, id string) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, id)
	return nil
}

func (g *gatewayStub) NotificationEmail(ctx context.Context) string {
	return g.email
}

func (g *gatewayStub) SaveNotificationEmail(ctx context.Context, email string) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.savedEmail = email
	return nil
}

type notifierStub struct {
	status     models.NotificationStatus
	recipients []string
}

func (n *notifierStub) NotifyNewInscription(ctx context.Context, recipient string, i models.Inscription) models.NotificationStatus {
	n.recipients = append(n.recipients, recipient)
	return n.status
}

type testSenderStub struct {
	status models.NotificationStatus
	err    error
	to     []string
}

func (s *testSenderStub) SendTest(ctx context.Context, recipient string) (models.NotificationStatus, error) {
	s.to = append(s.to, recipient)
	return s.status, s.err
}

type memoryCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
		}
	}
	return nil
}
