package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/debounce"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

// Store is the storage surface the dashboard reads and mutates.
type Store interface {
	List(ctx context.Context) ([]models.Inscription, error)
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error
	Delete(ctx context.Context, id string) error
}

// Authenticator checks the admin credential pair and returns a session marker.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// SessionStore persists the session marker between controller instances.
type SessionStore interface {
	Load() (string, bool)
	Save(marker string) error
	Clear() error
}

// ErrSaving is returned when SaveEdit is called while a save is in flight.
var ErrSaving = errors.New("status update already in progress")

// Editor is the state of the status-edit form.
type Editor struct {
	ID       string
	FullName string
	Code     string
	Unit     string
	Status   models.Status
	Comment  string
	Saving   bool
	Err      error
}

type Options struct {
	SearchDelay time.Duration
	Scheduler   debounce.Scheduler
	Catalog     *catalog.Catalog
	Logger      *zap.Logger
	Now         func() time.Time
}

// Controller owns the dashboard session: login state, the working set,
// the derived view, counters and the status editor.
type Controller struct {
	mu       sync.Mutex
	store    Store
	auth     Authenticator
	sessions SessionStore
	search   *debounce.Debouncer
	msgs     catalog.AdminMessages
	logger   *zap.Logger
	now      func() time.Time

	loggedIn  bool
	records   []models.Inscription
	view      View
	visible   []models.Inscription
	stats     models.Stats
	editor    *Editor
	editorGen int
}

// NewController restores the logged-in flag from the session store.
func NewController(store Store, auth Authenticator, sessions SessionStore, opts Options) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = 300 * time.Millisecond
	}
	if sessions == nil {
		sessions = &MemorySession{}
	}

	c := &Controller{
		store:    store,
		auth:     auth,
		sessions: sessions,
		search:   debounce.New(opts.SearchDelay, opts.Scheduler),
		msgs:     opts.Catalog.Messages.Admin,
		logger:   opts.Logger,
		now:      opts.Now,
		view:     View{Sort: SortDateDesc},
	}
	if marker, ok := sessions.Load(); ok && marker != "" {
		c.loggedIn = true
	}
	return c
}

// Login compares the credentials through the authenticator and, on
// success, stores the session marker.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return appErrors.FieldError("email", c.msgs.EmailRequired)
	}
	if password == "" {
		return appErrors.FieldError("password", c.msgs.PasswordRequired)
	}

	marker, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.sessions.Save(marker); err != nil {
		return err
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

// Logout clears the flag, the marker and the working set.
func (c *Controller) Logout() error {
	c.search.Cancel()
	c.mu.Lock()
	c.loggedIn = false
	c.records = nil
	c.visible = nil
	c.stats = models.Stats{}
	c.editor = nil
	c.mu.Unlock()
	return c.sessions.Clear()
}

func (c *Controller) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

func (c *Controller) requireLogin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return appErrors.Clone(appErrors.ErrUnauthorized, c.msgs.SessionRequired)
	}
	return nil
}

// Load replaces the working set with a fresh read.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	records, err := c.store.List(ctx)
	if err != nil {
		c.logger.Error("load inscriptions", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, c.msgs.LoadError)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]models.Inscription(nil), records...)
	c.recomputeLocked()
	return nil
}

func (c *Controller) SetFilter(status models.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Status = status
	c.recomputeLocked()
}

func (c *Controller) SetSort(key SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Sort = key
	c.recomputeLocked()
}

// SetSearch applies text once it has been stable for the search delay.
func (c *Controller) SetSearch(text string) {
	c.search.Trigger(func() { c.ApplySearch(text) })
}

// ApplySearch applies text immediately.
func (c *Controller) ApplySearch(text string) {
	c.search.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Search = text
	c.recomputeLocked()
}

// SetView replaces the whole view at once.
func (c *Controller) SetView(view View) {
	c.search.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
	c.recomputeLocked()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Visible returns the filtered and sorted records.
func (c *Controller) Visible() []models.Inscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Inscription(nil), c.visible...)
}

// Empty reports whether the current view has no rows.
func (c *Controller) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visible) == 0
}

func (c *Controller) Stats() models.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Records returns the full working set.
func (c *Controller) Records() []models.Inscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Inscription(nil), c.records...)
}

// OpenEdit opens the editor on record id. It reports false when the record
// is not in the working set.
func (c *Controller) OpenEdit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return false
	}
	r := c.records[idx]
	c.editorGen++
	c.editor = &Editor{
		ID:       r.ID,
		FullName: r.FullName,
		Code:     r.Code,
		Unit:     r.Unit,
		Status:   r.Status,
		Comment:  r.CommentText(),
	}
	return true
}

// Editor returns a copy of the open editor.
func (c *Controller) Editor() (Editor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editor == nil {
		return Editor{}, false
	}
	return *c.editor, true
}

func (c *Controller) SetEditStatus(status models.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editor != nil {
		c.editor.Status = status
	}
}

func (c *Controller) SetEditComment(comment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editor != nil {
		c.editor.Comment = comment
	}
}

// CloseEdit discards the editor. Closing a closed editor does nothing.
func (c *Controller) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor = nil
}

// SaveEdit sends one update for the open editor. On success the record is
// changed in place and the editor closes; on failure it stays open with
// Err set. With no editor open it does nothing.
func (c *Controller) SaveEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.editor == nil {
		c.mu.Unlock()
		return nil
	}
	if c.editor.Saving {
		c.mu.Unlock()
		return ErrSaving
	}
	c.editor.Saving = true
	c.editor.Err = nil
	id, gen := c.editor.ID, c.editorGen
	update := models.StatusUpdate{
		Status:     c.editor.Status,
		Comment:    strings.TrimSpace(c.editor.Comment),
		ModifiedAt: c.now().UTC(),
	}
	c.mu.Unlock()

	err := c.store.UpdateStatus(ctx, id, update)

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.editor != nil && c.editorGen == gen
	if current {
		c.editor.Saving = false
	}
	if err != nil {
		c.logger.Warn("status update failed", zap.String("id", id), zap.Error(err))
		if current {
			c.editor.Err = err
		}
		return err
	}

	if idx := c.indexLocked(id); idx >= 0 {
		r := &c.records[idx]
		r.Status = update.Status
		modified := update.ModifiedAt
		r.ModifiedAt = &modified
		if update.Comment == "" {
			r.Comment = nil
		} else {
			comment := update.Comment
			r.Comment = &comment
		}
	}
	c.recomputeLocked()
	if current {
		c.editor = nil
	}
	return nil
}

// Delete removes a record from storage and from the working set.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.records = append(c.records[:idx:idx], c.records[idx+1:]...)
	}
	if c.editor != nil && c.editor.ID == id {
		c.editor = nil
	}
	c.recomputeLocked()
	return nil
}

// Close stops the search timer.
func (c *Controller) Close() {
	c.search.Cancel()
}

func (c *Controller) indexLocked(id string) int {
	for i := range c.records {
		if c.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) recomputeLocked() {
	c.visible = Apply(c.records, c.view)
	c.stats = Count(c.records)
}

// MemorySession keeps the marker in process memory.
type MemorySession struct {
	mu     sync.Mutex
	marker string
}

func (s *MemorySession) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker, s.marker != ""
}

func (s *MemorySession) Save(marker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = marker
	return nil
}

func (s *MemorySession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = ""
	return nil
}
