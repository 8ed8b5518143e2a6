package registration

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/debounce"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

// Submitter performs the create call for a validated registration.
type Submitter interface {
	Submit(ctx context.Context, reg models.Registration) (*models.Receipt, error)
}

// Phase is the submission workflow state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrSubmitting is returned when Submit is called while a submission is in flight.
	ErrSubmitting = errors.New("submission already in progress")
	// ErrCompleted is returned once the form has been submitted successfully.
	ErrCompleted = errors.New("registration already completed")
)

// ValidationError lists the failing fields; Focus is the first one in
// FieldOrder.
type ValidationError struct {
	Focus  Field
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	return string(e.Focus) + ": " + e.Fields[e.Focus]
}

func (e *ValidationError) Unwrap() error {
	return appErrors.FieldError(string(e.Focus), e.Fields[e.Focus])
}

type Options struct {
	CheckDelay time.Duration
	Scheduler  debounce.Scheduler
	Catalog    *catalog.Catalog
	Logger     *zap.Logger
}

// Form owns the state of one registration form session.
type Form struct {
	mu        sync.Mutex
	submitter Submitter
	checker   *CodeChecker
	msgs      catalog.RegistrationMessages
	logger    *zap.Logger

	values  map[Field]string
	errors  map[Field]string
	phase   Phase
	failure string
	receipt *models.Receipt
}

func NewForm(lookup Lookup, submitter Submitter, opts Options) *Form {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CheckDelay <= 0 {
		opts.CheckDelay = 500 * time.Millisecond
	}
	msgs := opts.Catalog.Messages.Registration
	return &Form{
		submitter: submitter,
		checker:   NewCodeChecker(lookup, debounce.New(opts.CheckDelay, opts.Scheduler), msgs, opts.Logger),
		msgs:      msgs,
		logger:    opts.Logger,
		values:    make(map[Field]string, len(FieldOrder)),
		errors:    make(map[Field]string),
	}
}

// SetField records an input event. Code input is normalized and drives
// the duplicate checker. Name and unit errors stay until the next blur or
// submit revalidates them.
func (f *Form) SetField(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseSucceeded {
		return ErrCompleted
	}

	if field == FieldCode {
		status := f.checker.Input(value)
		f.values[field] = status.Code
		switch status.State {
		case CodeInvalid:
			f.errors[field] = status.Message
		default:
			delete(f.errors, field)
		}
		return nil
	}
	f.values[field] = value
	return nil
}

// Blur runs the field validator for a name or unit field and returns the
// resulting message, empty on success.
func (f *Form) Blur(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if field == FieldCode {
		return f.errors[field]
	}
	return f.validateTextLocked(field)
}

func (f *Form) validateTextLocked(field Field) string {
	msg := ValidateText(field, f.values[field], f.msgs)
	if msg == "" {
		delete(f.errors, field)
	} else {
		f.errors[field] = msg
	}
	return msg
}

func (f *Form) validateCodeLocked() string {
	code := f.values[FieldCode]
	status := f.checker.Status()

	var msg string
	switch {
	case code == "":
		msg = f.msgs.CPRequired
	case !ValidCode(code):
		msg = f.msgs.CPFormat
	case status.Code != code:
		msg = f.msgs.CPUnverified
	case status.State == CodeTaken:
		msg = f.msgs.CPExists
	case status.State != CodeAvailable:
		msg = f.msgs.CPUnverified
	}
	if msg == "" {
		delete(f.errors, FieldCode)
	} else {
		f.errors[FieldCode] = msg
	}
	return msg
}

// Submit validates every field in order and, when all pass and the code
// was confirmed available, performs exactly one create call. The form
// keeps its values on failure so Submit can be retried.
func (f *Form) Submit(ctx context.Context) (*models.Receipt, error) {
	f.mu.Lock()
	switch f.phase {
	case PhaseSucceeded:
		f.mu.Unlock()
		return nil, ErrCompleted
	case PhaseSubmitting, PhaseValidating:
		f.mu.Unlock()
		return nil, ErrSubmitting
	}

	f.phase = PhaseValidating
	f.failure = ""
	verr := &ValidationError{Fields: make(map[Field]string)}
	for _, field := range FieldOrder {
		var msg string
		if field == FieldCode {
			msg = f.validateCodeLocked()
		} else {
			msg = f.validateTextLocked(field)
		}
		if msg != "" {
			if verr.Focus == "" {
				verr.Focus = field
			}
			verr.Fields[field] = msg
		}
	}
	if verr.Focus != "" {
		f.phase = PhaseIdle
		f.mu.Unlock()
		return nil, verr
	}

	reg := f.registrationLocked()
	f.phase = PhaseSubmitting
	f.mu.Unlock()

	receipt, err := f.submitter.Submit(ctx, reg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if verr := f.fieldErrorLocked(err); verr != nil {
			f.phase = PhaseIdle
			f.logger.Debug("registration rejected by server", zap.String("field", string(verr.Focus)))
			return nil, verr
		}
		f.phase = PhaseFailed
		if errors.Is(err, appErrors.ErrConflict) {
			f.checker.MarkTaken(reg.Code)
			f.errors[FieldCode] = f.msgs.CPExists
			f.failure = f.msgs.CPExists
		} else {
			f.failure = f.msgs.SubmissionError
		}
		f.logger.Warn("registration submit failed", zap.String("code", reg.Code), zap.Error(err))
		return nil, err
	}

	f.phase = PhaseSucceeded
	f.receipt = receipt
	f.checker.Stop()
	return receipt, nil
}

// fieldErrorLocked maps a server validation error naming a payload field
// onto the matching form field.
func (f *Form) fieldErrorLocked(err error) *ValidationError {
	var apiErr *appErrors.Error
	if !errors.Is(err, appErrors.ErrValidation) || !errors.As(err, &apiErr) || apiErr.Field == "" {
		return nil
	}
	field, ok := FieldFromName(apiErr.Field)
	if !ok {
		return nil
	}
	f.errors[field] = apiErr.Message
	return &ValidationError{Focus: field, Fields: map[Field]string{field: apiErr.Message}}
}

func (f *Form) registrationLocked() models.Registration {
	return models.Registration{
		LastName:  catalog.SanitizeString(f.values[FieldLastName]),
		FirstName: catalog.SanitizeString(f.values[FieldFirstName]),
		Code:      NormalizeCode(f.values[FieldCode]),
		Unit:      catalog.SanitizeString(f.values[FieldUnit]),
	}
}

// AwaitCode blocks until the duplicate check for the current code settles.
func (f *Form) AwaitCode(ctx context.Context) (CodeStatus, error) {
	return f.checker.Await(ctx)
}

func (f *Form) Code() CodeStatus {
	return f.checker.Status()
}

func (f *Form) Value(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Errors returns a copy of the current field messages.
func (f *Form) Errors() map[Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[Field]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Failure is the single reason shown after a failed create call.
func (f *Form) Failure() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

func (f *Form) Receipt() *models.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// Confirmation returns the success texts once the form has succeeded.
func (f *Form) Confirmation() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseSucceeded {
		return nil
	}
	return []string{f.msgs.SuccessTitle, f.msgs.SuccessText, f.msgs.SuccessContact}
}

// Sanitized exposes the payload that Submit would send.
func (f *Form) Sanitized() models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registrationLocked()
}
