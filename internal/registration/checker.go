package registration

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/debounce"
)

// Lookup answers whether a normalized code is already registered.
type Lookup interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeState is the duplicate-check state of the code field.
type CodeState int

const (
	CodeEmpty CodeState = iota
	CodeTyping
	CodeInvalid
	CodePending
	CodeChecking
	CodeAvailable
	CodeTaken
)

func (s CodeState) String() string {
	switch s {
	case CodeEmpty:
		return "empty"
	case CodeTyping:
		return "typing"
	case CodeInvalid:
		return "invalid"
	case CodePending:
		return "pending"
	case CodeChecking:
		return "checking"
	case CodeAvailable:
		return "available"
	case CodeTaken:
		return "taken"
	}
	return "unknown"
}

// Settled reports whether no check is outstanding for the current input.
func (s CodeState) Settled() bool {
	return s != CodePending && s != CodeChecking
}

// CodeStatus is a snapshot of the code field.
type CodeStatus struct {
	Code    string
	State   CodeState
	Message string
}

const defaultCheckTimeout = 10 * time.Second

// CodeChecker validates the code field as it is typed and runs a debounced
// uniqueness lookup once the shape is valid. Only one lookup is in flight
// at a time; lookup failures count as available.
type CodeChecker struct {
	mu       sync.Mutex
	lookup   Lookup
	debounce *debounce.Debouncer
	msgs     catalog.RegistrationMessages
	logger   *zap.Logger
	timeout  time.Duration

	input    string
	state    CodeState
	message  string
	checking bool
	dropped  string
	changed  chan struct{}
}

func NewCodeChecker(lookup Lookup, d *debounce.Debouncer, msgs catalog.RegistrationMessages, logger *zap.Logger) *CodeChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeChecker{
		lookup:   lookup,
		debounce: d,
		msgs:     msgs,
		logger:   logger,
		timeout:  defaultCheckTimeout,
		changed:  make(chan struct{}),
	}
}

// Input records a keystroke on the code field and returns the new status.
func (c *CodeChecker) Input(raw string) CodeStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.debounce.Cancel()
	c.dropped = ""
	shape := ClassifyCode(raw)
	c.input = NormalizeCode(raw)
	c.message = CodeShapeMessage(shape, c.msgs)

	switch shape {
	case ShapeEmpty:
		c.state = CodeEmpty
		c.message = ""
	case ShapeTooShort:
		c.state = CodeTyping
	case ShapeBadCharset, ShapeTooLong:
		c.state = CodeInvalid
	default:
		c.state = CodePending
		c.scheduleLocked(c.input)
	}
	c.notifyLocked()
	return c.statusLocked()
}

// MarkTaken records a conflict reported by storage after submission.
func (c *CodeChecker) MarkTaken(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if code != c.input {
		return
	}
	c.debounce.Cancel()
	c.state = CodeTaken
	c.message = c.msgs.CPTaken
	c.notifyLocked()
}

func (c *CodeChecker) Status() CodeStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Await blocks until the current input has a settled state.
func (c *CodeChecker) Await(ctx context.Context) (CodeStatus, error) {
	for {
		c.mu.Lock()
		status := c.statusLocked()
		changed := c.changed
		c.mu.Unlock()

		if status.State.Settled() {
			return status, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}
}

// Stop cancels any pending check.
func (c *CodeChecker) Stop() {
	c.debounce.Cancel()
}

func (c *CodeChecker) scheduleLocked(code string) {
	c.debounce.Trigger(func() { c.check(code) })
}

func (c *CodeChecker) check(code string) {
	c.mu.Lock()
	if code != c.input {
		c.mu.Unlock()
		return
	}
	if c.checking {
		// rerun once the in-flight lookup settles
		c.dropped = code
		c.mu.Unlock()
		return
	}
	c.dropped = ""
	c.checking = true
	c.state = CodeChecking
	c.message = c.msgs.CPChecking
	c.notifyLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	exists, err := c.lookup.CodeExists(ctx, code)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checking = false

	if code != c.input {
		c.logger.Debug("discarding stale code check", zap.String("code", code))
		if c.state == CodePending && c.dropped == c.input {
			c.dropped = ""
			c.scheduleLocked(c.input)
		}
		return
	}

	switch {
	case err != nil:
		c.logger.Warn("code lookup failed, treating as available", zap.String("code", code), zap.Error(err))
		c.state = CodeAvailable
		c.message = c.msgs.CPAvailable
	case exists:
		c.state = CodeTaken
		c.message = c.msgs.CPTaken
	default:
		c.state = CodeAvailable
		c.message = c.msgs.CPAvailable
	}
	c.notifyLocked()
}

func (c *CodeChecker) statusLocked() CodeStatus {
	return CodeStatus{Code: c.input, State: c.state, Message: c.message}
}

func (c *CodeChecker) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}
