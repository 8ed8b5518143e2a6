package registration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/debounce"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

var msgs = catalog.Default().Messages.Registration

type lookupStub struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
	calls []string
	gate  chan struct{}
	began chan string
}

func (l *lookupStub) CodeExists(ctx context.Context, code string) (bool, error) {
	l.mu.Lock()
	l.calls = append(l.calls, code)
	gate, began := l.gate, l.began
	l.mu.Unlock()

	if began != nil {
		began <- code
	}
	if gate != nil {
		<-gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.taken[code], l.err
}

func (l *lookupStub) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type submitterStub struct {
	mu    sync.Mutex
	errs  []error
	calls []models.Registration
	gate  chan struct{}
	began chan struct{}
}

func (s *submitterStub) Submit(ctx context.Context, reg models.Registration) (*models.Receipt, error) {
	s.mu.Lock()
	s.calls = append(s.calls, reg)
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	gate, began := s.gate, s.began
	s.mu.Unlock()

	if began != nil {
		close(began)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.Receipt{
		Inscription:  models.Inscription{ID: "new", Code: reg.Code, Status: models.StatusReceived},
		Notification: models.NotificationSimulated,
	}, nil
}

func newForm(lookup Lookup, submitter Submitter) (*Form, *debounce.ManualScheduler) {
	sched := debounce.NewManualScheduler()
	return NewForm(lookup, submitter, Options{Scheduler: sched}), sched
}

func fill(t *testing.T, f *Form, nom, prenom, code, uo string) {
	t.Helper()
	require.NoError(t, f.SetField(FieldLastName, nom))
	require.NoError(t, f.SetField(FieldFirstName, prenom))
	require.NoError(t, f.SetField(FieldCode, code))
	require.NoError(t, f.SetField(FieldUnit, uo))
}

func TestClassifyCode(t *testing.T) {
	cases := map[string]CodeShape{
		"":            ShapeEmpty,
		"   ":         ShapeEmpty,
		"ab":          ShapeTooShort,
		"ab1":         ShapeValid,
		" 8710320p ":  ShapeValid,
		"ABCDEFGHIJ":  ShapeValid,
		"ABCDEFGHIJK": ShapeTooLong,
		"AB-1":        ShapeBadCharset,
		"AB 12":       ShapeBadCharset,
		"é12":         ShapeBadCharset,
		"ıab":         ShapeBadCharset,
	}
	for input, want := range cases {
		assert.Equal(t, want, ClassifyCode(input), "input %q", input)
	}
}

func TestNormalizeCodeIdempotent(t *testing.T) {
	for _, raw := range []string{"ab1", " 8710320p", "TestCp01 ", "ZZZ", "x9y8z7"} {
		once := NormalizeCode(raw)
		assert.Equal(t, once, NormalizeCode(once))
		assert.Regexp(t, `^[A-Z0-9]+$`, once)
	}
}

func TestBadCharsetRejectedWithoutLookup(t *testing.T) {
	lookup := &lookupStub{}
	form, sched := newForm(lookup, &submitterStub{})

	for _, raw := range []string{"AB-12", "abc!", "é1234", "CP 001", "ıabc"} {
		require.NoError(t, form.SetField(FieldCode, raw))
		assert.Equal(t, CodeInvalid, form.Code().State)
		assert.Equal(t, msgs.CPCharset, form.Errors()[FieldCode])
		sched.Advance(time.Second)
	}
	assert.Empty(t, lookup.Calls())
}

func TestShortCodeIsInformational(t *testing.T) {
	lookup := &lookupStub{}
	form, sched := newForm(lookup, &submitterStub{})

	require.NoError(t, form.SetField(FieldCode, "a1"))
	sched.Advance(time.Second)

	status := form.Code()
	assert.Equal(t, CodeTyping, status.State)
	assert.Equal(t, msgs.CPTooShort, status.Message)
	assert.Empty(t, form.Errors())
	assert.Empty(t, lookup.Calls())
}

func TestDuplicateCheckIsDebounced(t *testing.T) {
	lookup := &lookupStub{}
	form, sched := newForm(lookup, &submitterStub{})

	for _, prefix := range []string{"ABC", "ABCD", "ABCDE", "ABCDE1"} {
		require.NoError(t, form.SetField(FieldCode, prefix))
		sched.Advance(200 * time.Millisecond)
	}
	assert.Empty(t, lookup.Calls())
	assert.Equal(t, CodePending, form.Code().State)

	sched.Advance(299 * time.Millisecond)
	assert.Empty(t, lookup.Calls())

	sched.Advance(time.Millisecond)
	assert.Equal(t, []string{"ABCDE1"}, lookup.Calls())
	assert.Equal(t, CodeAvailable, form.Code().State)
	assert.Equal(t, msgs.CPAvailable, form.Code().Message)
}

func TestLookupFailureCountsAsAvailable(t *testing.T) {
	lookup := &lookupStub{err: errors.New("connection refused")}
	form, sched := newForm(lookup, &submitterStub{})

	require.NoError(t, form.SetField(FieldCode, "8710320P"))
	sched.Advance(500 * time.Millisecond)

	assert.Equal(t, CodeAvailable, form.Code().State)
}

func TestCheckWhileInFlightIsNoOpAndStaleResultDiscarded(t *testing.T) {
	lookup := &lookupStub{gate: make(chan struct{}), began: make(chan string, 4), taken: map[string]bool{"ABC": true}}
	form, sched := newForm(lookup, &submitterStub{})

	require.NoError(t, form.SetField(FieldCode, "ABC"))
	first := make(chan struct{})
	go func() {
		sched.Advance(500 * time.Millisecond)
		close(first)
	}()
	assert.Equal(t, "ABC", <-lookup.began)

	require.NoError(t, form.SetField(FieldCode, "ABD"))
	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"ABC"}, lookup.Calls())
	assert.Equal(t, CodePending, form.Code().State)

	lookup.gate <- struct{}{}
	<-first
	assert.Equal(t, CodePending, form.Code().State, "result for ABC must not apply to ABD")

	lookup.mu.Lock()
	lookup.gate = nil
	lookup.began = nil
	lookup.mu.Unlock()
	sched.Advance(500 * time.Millisecond)

	assert.Equal(t, []string{"ABC", "ABD"}, lookup.Calls())
	assert.Equal(t, CodeAvailable, form.Code().State)
}

func TestSubmitBlockedWhenCodeTaken(t *testing.T) {
	lookup := &lookupStub{taken: map[string]bool{"AB1": true}}
	submitter := &submitterStub{}
	form, sched := newForm(lookup, submitter)

	fill(t, form, "Al", "Bo", "ab1", "X1")
	assert.Equal(t, "AB1", form.Value(FieldCode))
	assert.Equal(t, CodePending, form.Code().State)
	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, CodeTaken, form.Code().State)

	_, err := form.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldCode, verr.Focus)
	assert.Equal(t, msgs.CPExists, verr.Fields[FieldCode])
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, submitter.calls)
	assert.Equal(t, PhaseIdle, form.Phase())
}

func TestSubmitBlockedWhilePending(t *testing.T) {
	submitter := &submitterStub{}
	form, _ := newForm(&lookupStub{}, submitter)

	fill(t, form, "Al", "Bo", "ab1", "X1")
	_, err := form.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldCode, verr.Focus)
	assert.Equal(t, msgs.CPUnverified, verr.Fields[FieldCode])
	assert.Empty(t, submitter.calls)
}

func TestSubmitReportsFirstFailingField(t *testing.T) {
	form, _ := newForm(&lookupStub{}, &submitterStub{})
	require.NoError(t, form.SetField(FieldFirstName, "J"))

	_, err := form.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldLastName, verr.Focus)
	assert.Equal(t, map[Field]string{
		FieldLastName:  msgs.NomRequired,
		FieldFirstName: msgs.PrenomMinLength,
		FieldCode:      msgs.CPRequired,
		FieldUnit:      msgs.UORequired,
	}, verr.Fields)
}

func TestBlurValidatesAndClears(t *testing.T) {
	form, _ := newForm(&lookupStub{}, &submitterStub{})

	require.NoError(t, form.SetField(FieldUnit, " X "))
	assert.Equal(t, msgs.UOMinLength, form.Blur(FieldUnit))
	assert.Contains(t, form.Errors(), FieldUnit)

	require.NoError(t, form.SetField(FieldUnit, "UO Gare du Nord"))
	assert.Empty(t, form.Blur(FieldUnit))
	assert.NotContains(t, form.Errors(), FieldUnit)
}

func TestSubmitSuccessIsTerminal(t *testing.T) {
	submitter := &submitterStub{}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "  Martin ", "Marie  Claire", "testcp02", "UO   Gare du Nord")
	sched.Advance(500 * time.Millisecond)

	receipt, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TESTCP02", receipt.Inscription.Code)
	assert.Equal(t, PhaseSucceeded, form.Phase())
	require.Len(t, submitter.calls, 1)
	assert.Equal(t, models.Registration{
		LastName:  "Martin",
		FirstName: "Marie Claire",
		Code:      "TESTCP02",
		Unit:      "UO Gare du Nord",
	}, submitter.calls[0])
	assert.Len(t, form.Confirmation(), 3)

	assert.ErrorIs(t, form.SetField(FieldLastName, "x"), ErrCompleted)
	_, err = form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrCompleted)
	assert.Len(t, submitter.calls, 1)
}

func TestFailedInsertKeepsFormAndAllowsRetry(t *testing.T) {
	submitter := &submitterStub{errs: []error{errors.New("insert failed")}}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "Dupont", "Jean", "1234567B", "UO Lyon Part-Dieu")
	sched.Advance(500 * time.Millisecond)

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, form.Phase())
	assert.Equal(t, msgs.SubmissionError, form.Failure())
	assert.Equal(t, "Dupont", form.Value(FieldLastName))
	assert.Equal(t, "1234567B", form.Value(FieldCode))

	receipt, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, PhaseSucceeded, form.Phase())
	assert.Len(t, submitter.calls, 2)
	assert.Equal(t, submitter.calls[0], submitter.calls[1])
}

func TestConflictFromStorageMarksCodeTaken(t *testing.T) {
	submitter := &submitterStub{errs: []error{appErrors.Clone(appErrors.ErrConflict, msgs.CPExists)}}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "Dupont", "Jean", "1234567A", "UO Lyon")
	sched.Advance(500 * time.Millisecond)

	_, err := form.Submit(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, CodeTaken, form.Code().State)
	assert.Equal(t, msgs.CPExists, form.Errors()[FieldCode])
	assert.Equal(t, msgs.CPExists, form.Failure())
}

func TestReentrantSubmitIgnored(t *testing.T) {
	submitter := &submitterStub{gate: make(chan struct{}), began: make(chan struct{})}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "Dupont", "Jean", "ABC123", "UO Lyon")
	sched.Advance(500 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()
	<-submitter.began

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.Equal(t, PhaseSubmitting, form.Phase())

	close(submitter.gate)
	assert.NoError(t, <-done)
	assert.Len(t, submitter.calls, 1)
}

func TestAwaitCode(t *testing.T) {
	lookup := &lookupStub{}
	sched := debounce.NewManualScheduler()
	form := NewForm(lookup, &submitterStub{}, Options{Scheduler: sched})
	require.NoError(t, form.SetField(FieldCode, "ABC"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	status, err := form.AwaitCode(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, CodePending, status.State)

	go sched.Advance(500 * time.Millisecond)
	status, err = form.AwaitCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CodeAvailable, status.State)
}

func TestStaleResultDoesNotRearmAfterCallbackFired(t *testing.T) {
	lookup := &lookupStub{gate: make(chan struct{}), began: make(chan string, 4)}
	form, sched := newForm(lookup, &submitterStub{})

	require.NoError(t, form.SetField(FieldCode, "ABC"))
	first := make(chan struct{})
	go func() {
		sched.Advance(500 * time.Millisecond)
		close(first)
	}()
	assert.Equal(t, "ABC", <-lookup.began)

	require.NoError(t, form.SetField(FieldCode, "ABD"))
	// the timer for ABD has fired but its callback has not yet taken the lock
	form.checker.debounce.Cancel()

	lookup.gate <- struct{}{}
	<-first
	assert.False(t, form.checker.debounce.Pending())

	lookup.mu.Lock()
	lookup.gate = nil
	lookup.began = nil
	lookup.mu.Unlock()
	form.checker.check("ABD")
	sched.Advance(time.Second)

	assert.Equal(t, []string{"ABC", "ABD"}, lookup.Calls())
	assert.Equal(t, CodeAvailable, form.Code().State)
}

func TestValidateTextMaxLength(t *testing.T) {
	long := strings.Repeat("é", MaxTextLength+1)
	assert.Equal(t, msgs.NomMaxLength, ValidateText(FieldLastName, long, msgs))
	assert.Equal(t, msgs.PrenomMaxLength, ValidateText(FieldFirstName, long, msgs))
	assert.Equal(t, msgs.UOMaxLength, ValidateText(FieldUnit, long, msgs))
	assert.Empty(t, ValidateText(FieldUnit, long[:len(long)-len("é")], msgs))
}

func TestBlurRejectsOverlongName(t *testing.T) {
	form, _ := newForm(&lookupStub{}, &submitterStub{})

	require.NoError(t, form.SetField(FieldLastName, strings.Repeat("a", MaxTextLength+1)))
	assert.Equal(t, msgs.NomMaxLength, form.Blur(FieldLastName))
	assert.Equal(t, msgs.NomMaxLength, form.Errors()[FieldLastName])
}

func TestServerFieldErrorMapsToFormField(t *testing.T) {
	submitter := &submitterStub{errs: []error{appErrors.FieldError("lieu_affectation_uo", "trop long")}}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "Dupont", "Jean", "1234567C", "UO Lyon")
	sched.Advance(500 * time.Millisecond)

	_, err := form.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldUnit, verr.Focus)
	assert.Equal(t, "trop long", form.Errors()[FieldUnit])
	assert.Empty(t, form.Failure())
	assert.Equal(t, PhaseIdle, form.Phase())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	receipt, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Len(t, submitter.calls, 2)
}

func TestServerErrorWithUnknownFieldIsSubmissionFailure(t *testing.T) {
	submitter := &submitterStub{errs: []error{appErrors.FieldError("email", "invalide")}}
	form, sched := newForm(&lookupStub{}, submitter)

	fill(t, form, "Dupont", "Jean", "1234567D", "UO Lyon")
	sched.Advance(500 * time.Millisecond)

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, form.Phase())
	assert.Equal(t, msgs.SubmissionError, form.Failure())
}
