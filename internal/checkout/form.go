package checkout

import (
	"context"
	"errors"
	"sync"

	"ngoledger/internal/client"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/money"
)

// Phase is where a donation attempt currently stands.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseOrderRequested       Phase = "order-requested"
	PhaseAwaitingConfirmation Phase = "awaiting-confirmation"
	PhaseVerifying            Phase = "verifying"
	PhaseSettled              Phase = "settled"
	PhaseFailed               Phase = "failed"
	PhaseCancelled            Phase = "cancelled"
)

const (
	MsgLoginRequired      = "Please login to make a donation"
	MsgInvalidAmount      = "Please enter a valid amount"
	MsgProcessFailed      = "Failed to process donation"
	MsgVerificationFailed = "Payment verification failed"
	msgPaymentFailed      = "Payment failed: "
)

// ErrBusy is returned by Submit while an attempt is outstanding.
var ErrBusy = errors.New("checkout: donation already in progress")

// ErrNoAttempt is returned by Wait before the first Submit.
var ErrNoAttempt = errors.New("checkout: no donation attempt")

// ValidationError blocks an attempt before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// WidgetError reports that the checkout widget failed or could not open.
type WidgetError struct {
	Message string
	Failure *Failure
	Err     error
}

func (e *WidgetError) Error() string { return e.Message }

func (e *WidgetError) Unwrap() error { return e.Err }

// Outcome is the terminal state of one attempt.
type Outcome struct {
	Phase   Phase
	Message string
	Result  *domain.VerificationResult
	Err     error
}

// Payments is the part of the API client the form calls.
type Payments interface {
	CreateOrder(ctx context.Context, ngoID int64, amount float64) (*domain.Order, error)
	VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) (*domain.VerificationResult, error)
}

// Identity tells the form who is donating.
type Identity interface {
	IsAuthenticated() bool
	Username() string
}

type FormOptions struct {
	NGOID    int64
	Payments Payments
	Widget   Widget
	Identity Identity
	Notify   RefreshNotifier
	Logger   *infra.Logger
}

// Form is one donation form instance. It allows a single outstanding
// attempt and handles only the first widget callback of each attempt.
type Form struct {
	opts   FormOptions
	logger *infra.Logger

	mu      sync.Mutex
	amount  string
	loading bool
	message string
	phase   Phase
	outcome *Outcome
	attempt uint64
	claimed bool
	done    chan struct{}
}

func NewForm(opts FormOptions) *Form {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Form{opts: opts, logger: logger, phase: PhaseIdle}
}

// SetAmount updates the amount field. It is ignored while loading.
func (f *Form) SetAmount(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loading {
		f.amount = v
	}
}

func (f *Form) Amount() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Error is the message shown next to the form, "" when there is none.
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Outcome returns the result of the last finished attempt.
func (f *Form) Outcome() (Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == nil {
		return Outcome{}, false
	}
	return *f.outcome, true
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loading && f.amount != ""
}

// Submit starts an attempt: it creates the order and opens the widget.
// It returns after the widget is open; use Wait for the outcome.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.opts.Identity == nil || !f.opts.Identity.IsAuthenticated() {
		f.message = MsgLoginRequired
		f.mu.Unlock()
		return &ValidationError{Message: MsgLoginRequired}
	}
	amount, err := money.ParseAmount(f.amount)
	if err != nil {
		f.message = MsgInvalidAmount
		f.mu.Unlock()
		return &ValidationError{Message: MsgInvalidAmount}
	}
	f.attempt++
	attempt := f.attempt
	f.claimed = false
	f.loading = true
	f.message = ""
	f.phase = PhaseOrderRequested
	f.done = make(chan struct{})
	f.mu.Unlock()

	order, err := f.opts.Payments.CreateOrder(ctx, f.opts.NGOID, amount)
	if err != nil {
		msg := MsgProcessFailed
		if client.IsRejection(err) && err.Error() != "" {
			msg = err.Error()
		}
		f.logger.Debug().Err(err).Int64("ngo_id", f.opts.NGOID).Msg("checkout: create order failed")
		f.finish(attempt, Outcome{Phase: PhaseFailed, Message: msg, Err: err})
		return err
	}

	opts := NewOptions(*order, f.opts.Identity.Username())
	if !f.advance(attempt, PhaseAwaitingConfirmation) {
		return nil
	}
	handlers := Handlers{
		OnComplete: func(conf domain.PaymentConfirmation) { f.complete(ctx, attempt, conf) },
		OnFail:     func(fl Failure) { f.fail(attempt, fl) },
		OnDismiss:  func() { f.dismiss(attempt) },
	}
	if err := f.opts.Widget.Open(ctx, opts, handlers); err != nil {
		werr := &WidgetError{Message: MsgProcessFailed, Err: err}
		if f.claim(attempt) {
			f.finish(attempt, Outcome{Phase: PhaseFailed, Message: MsgProcessFailed, Err: werr})
		}
		return werr
	}
	return nil
}

// Wait blocks until the current attempt finishes or ctx is done.
func (f *Form) Wait(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return Outcome{}, ErrNoAttempt
	}
	select {
	case <-done:
		out, _ := f.Outcome()
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Reset clears the form. An outstanding attempt is abandoned as cancelled
// and its late callbacks are ignored.
func (f *Form) Reset() {
	f.mu.Lock()
	attempt, loading := f.attempt, f.loading
	f.claimed = true
	f.mu.Unlock()
	if loading {
		f.finish(attempt, Outcome{Phase: PhaseCancelled})
	}
	f.mu.Lock()
	f.amount = ""
	f.message = ""
	f.mu.Unlock()
}

func (f *Form) complete(ctx context.Context, attempt uint64, conf domain.PaymentConfirmation) {
	if !f.claim(attempt) {
		return
	}
	f.advance(attempt, PhaseVerifying)
	res, err := f.opts.Payments.VerifyPayment(ctx, conf)
	if err == nil && (res == nil || !res.Success) {
		err = errors.New("checkout: verification unsuccessful")
	}
	if err != nil {
		f.logger.Warn().Err(err).Str("order_id", conf.OrderID).Msg("checkout: verification failed")
		f.finish(attempt, Outcome{Phase: PhaseFailed, Message: MsgVerificationFailed, Err: err})
		return
	}
	f.mu.Lock()
	f.amount = ""
	f.mu.Unlock()
	done, ok := f.record(attempt, Outcome{Phase: PhaseSettled, Result: res})
	if !ok {
		return
	}
	// Waiters are released only once the views have been refreshed.
	if f.opts.Notify != nil {
		f.opts.Notify(ctx, *res)
	}
	close(done)
}

func (f *Form) fail(attempt uint64, fl Failure) {
	if !f.claim(attempt) {
		return
	}
	msg := msgPaymentFailed + fl.Description
	f.finish(attempt, Outcome{Phase: PhaseFailed, Message: msg, Err: &WidgetError{Message: msg, Failure: &fl}})
}

func (f *Form) dismiss(attempt uint64) {
	if !f.claim(attempt) {
		return
	}
	f.finish(attempt, Outcome{Phase: PhaseCancelled})
}

// claim marks the first callback of attempt.
func (f *Form) claim(attempt uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attempt != f.attempt || f.claimed || !f.loading {
		return false
	}
	f.claimed = true
	return true
}

func (f *Form) advance(attempt uint64, p Phase) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attempt != f.attempt || !f.loading {
		return false
	}
	f.phase = p
	return true
}

// finish records the outcome and releases waiters.
func (f *Form) finish(attempt uint64, out Outcome) {
	if done, ok := f.record(attempt, out); ok {
		close(done)
	}
}

// record stores the outcome of attempt and returns its done channel for the
// caller to close. Failed and cancelled attempts put the form back in idle.
func (f *Form) record(attempt uint64, out Outcome) (chan struct{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attempt != f.attempt || !f.loading {
		return nil, false
	}
	f.loading = false
	f.message = out.Message
	switch out.Phase {
	case PhaseSettled:
		f.phase = PhaseSettled
	default:
		f.phase = PhaseIdle
	}
	f.outcome = &out
	return f.done, true
}
