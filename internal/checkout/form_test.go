package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ngoledger/internal/client"
	"ngoledger/internal/domain"
)

type fakePayments struct {
	mu        sync.Mutex
	order     *domain.Order
	orderErr  error
	verifyErr error
	orders    []float64
	verified  []domain.PaymentConfirmation
}

func (p *fakePayments) CreateOrder(_ context.Context, _ int64, amount float64) (*domain.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, amount)
	if p.orderErr != nil {
		return nil, p.orderErr
	}
	o := *p.order
	return &o, nil
}

func (p *fakePayments) VerifyPayment(_ context.Context, conf domain.PaymentConfirmation) (*domain.VerificationResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified = append(p.verified, conf)
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return &domain.VerificationResult{Success: true, Transaction: &domain.Transaction{ID: 1}}, nil
}

// fakeWidget records what it was opened with and lets the test drive the
// callbacks.
type fakeWidget struct {
	mu       sync.Mutex
	opened   []Options
	handlers Handlers
	openErr  error
	onOpen   func(Handlers)
}

func (w *fakeWidget) Open(_ context.Context, opts Options, h Handlers) error {
	w.mu.Lock()
	w.opened = append(w.opened, opts)
	w.handlers = h
	onOpen := w.onOpen
	w.mu.Unlock()
	if w.openErr != nil {
		return w.openErr
	}
	if onOpen != nil {
		onOpen(h)
	}
	return nil
}

func (w *fakeWidget) opens() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.opened)
}

type identity struct {
	name string
}

func (i identity) IsAuthenticated() bool { return i.name != "" }
func (i identity) Username() string      { return i.name }

func scenarioOrder() *domain.Order {
	return &domain.Order{Key: "k1", Amount: 500, Currency: "INR", OrderID: "order_1"}
}

func newForm(p *fakePayments, w *fakeWidget, notify RefreshNotifier) *Form {
	return NewForm(FormOptions{NGOID: 1, Payments: p, Widget: w, Identity: identity{name: "john_doe"}, Notify: notify})
}

func waitOutcome(t *testing.T, f *Form) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	return out
}

func TestInvalidAmountsNeverCreateOrders(t *testing.T) {
	for _, amount := range []string{"", "0", "-5", "abc", "NaN", "1.234"} {
		t.Run(amount, func(t *testing.T) {
			p := &fakePayments{order: scenarioOrder()}
			w := &fakeWidget{}
			f := newForm(p, w, nil)
			f.SetAmount(amount)
			err := f.Submit(context.Background())
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.Error() != MsgInvalidAmount {
				t.Fatalf("message = %q", f.Error())
			}
			if len(p.orders) != 0 || w.opens() != 0 {
				t.Fatalf("order initiator invoked")
			}
			if f.Loading() {
				t.Fatalf("loading left set")
			}
		})
	}
}

func TestLoginRequired(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	f := NewForm(FormOptions{NGOID: 1, Payments: p, Widget: &fakeWidget{}, Identity: identity{}})
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if f.Error() != MsgLoginRequired {
		t.Fatalf("message = %q", f.Error())
	}
	if len(p.orders) != 0 {
		t.Fatalf("order created while anonymous")
	}
}

func TestSuccessfulDonation(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{}
	var refreshed int
	f := newForm(p, w, func(_ context.Context, res domain.VerificationResult) {
		if !res.Success {
			t.Errorf("notifier got unsuccessful result")
		}
		refreshed++
	})

	f.SetAmount("500")
	if !f.CanSubmit() {
		t.Fatalf("expected submit enabled")
	}
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if f.Phase() != PhaseAwaitingConfirmation || !f.Loading() || f.CanSubmit() {
		t.Fatalf("phase=%s loading=%v", f.Phase(), f.Loading())
	}
	f.SetAmount("999")
	if f.Amount() != "500" {
		t.Fatalf("amount changed while loading")
	}

	opened := w.opened[0]
	if opened.Key != "k1" || opened.Amount != 500 || opened.Currency != "INR" || opened.OrderID != "order_1" {
		t.Fatalf("descriptor not passed unchanged: %+v", opened)
	}
	if opened.Name != "NGO Platform" || opened.Description != "Donation" || opened.Theme.Color != "#4F46E5" || opened.Prefill.Name != "john_doe" {
		t.Fatalf("unexpected widget options %+v", opened)
	}
	if p.orders[0] != 500 {
		t.Fatalf("order amount = %v", p.orders[0])
	}

	conf := domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig_1"}
	w.handlers.OnComplete(conf)

	out := waitOutcome(t, f)
	if out.Phase != PhaseSettled || out.Result == nil {
		t.Fatalf("outcome = %+v", out)
	}
	if f.Amount() != "" || f.Loading() || f.Error() != "" {
		t.Fatalf("form not reset: amount=%q loading=%v err=%q", f.Amount(), f.Loading(), f.Error())
	}
	if f.Phase() != PhaseSettled {
		t.Fatalf("phase = %s", f.Phase())
	}
	if len(p.verified) != 1 || p.verified[0] != conf {
		t.Fatalf("verified = %+v", p.verified)
	}
	if refreshed != 1 {
		t.Fatalf("refreshed %d times", refreshed)
	}
}

func TestOnlyFirstCallbackCounts(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{}
	var refreshed int
	f := newForm(p, w, func(context.Context, domain.VerificationResult) { refreshed++ })
	f.SetAmount("10")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	conf := domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "s"}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); w.handlers.OnComplete(conf) }()
		go func() { defer wg.Done(); w.handlers.OnFail(Failure{Description: "late"}) }()
		go func() { defer wg.Done(); w.handlers.OnDismiss() }()
	}
	wg.Wait()
	waitOutcome(t, f)
	if len(p.verified) > 1 {
		t.Fatalf("verified %d times", len(p.verified))
	}
	if refreshed > 1 {
		t.Fatalf("refreshed %d times", refreshed)
	}
}

func TestCreateOrderRejected(t *testing.T) {
	p := &fakePayments{orderErr: &client.Error{Kind: client.KindRejection, Status: 400, Message: "Invalid amount"}}
	w := &fakeWidget{}
	f := newForm(p, w, nil)
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if f.Error() != "Invalid amount" || f.Loading() || w.opens() != 0 {
		t.Fatalf("err=%q loading=%v opens=%d", f.Error(), f.Loading(), w.opens())
	}
	if f.Phase() != PhaseIdle {
		t.Fatalf("phase = %s", f.Phase())
	}
}

func TestCreateOrderNetworkFailure(t *testing.T) {
	p := &fakePayments{orderErr: &client.Error{Kind: client.KindNetwork, Message: "Failed to create order", Err: errors.New("refused")}}
	f := newForm(p, &fakeWidget{}, nil)
	f.SetAmount("500")
	_ = f.Submit(context.Background())
	if f.Error() != MsgProcessFailed {
		t.Fatalf("message = %q", f.Error())
	}
}

func TestWidgetPaymentFailed(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{onOpen: func(h Handlers) { h.OnFail(Failure{Code: "BAD_REQUEST_ERROR", Description: "Insufficient funds"}) }}
	f := newForm(p, w, nil)
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out := waitOutcome(t, f)
	if out.Phase != PhaseFailed {
		t.Fatalf("outcome phase = %s", out.Phase)
	}
	if f.Error() != "Payment failed: Insufficient funds" || f.Loading() || f.Phase() != PhaseIdle {
		t.Fatalf("err=%q loading=%v phase=%s", f.Error(), f.Loading(), f.Phase())
	}
	if len(p.verified) != 0 {
		t.Fatalf("verification ran after failure")
	}
}

func TestWidgetDismissed(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{onOpen: func(h Handlers) { h.OnDismiss() }}
	f := newForm(p, w, nil)
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out := waitOutcome(t, f)
	if out.Phase != PhaseCancelled || out.Err != nil {
		t.Fatalf("outcome = %+v", out)
	}
	if f.Error() != "" || f.Loading() || f.Phase() != PhaseIdle {
		t.Fatalf("err=%q loading=%v phase=%s", f.Error(), f.Loading(), f.Phase())
	}
	if f.Amount() != "500" {
		t.Fatalf("amount cleared on cancel")
	}
	if len(p.verified) != 0 {
		t.Fatalf("verification ran after dismissal")
	}
}

func TestVerificationFailure(t *testing.T) {
	p := &fakePayments{order: scenarioOrder(), verifyErr: &client.Error{Kind: client.KindRejection, Status: 400, Message: "Invalid payment signature"}}
	var refreshed int
	w := &fakeWidget{onOpen: func(h Handlers) {
		h.OnComplete(domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "bad"})
	}}
	f := newForm(p, w, func(context.Context, domain.VerificationResult) { refreshed++ })
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitOutcome(t, f)
	if f.Error() != MsgVerificationFailed || f.Loading() {
		t.Fatalf("err=%q loading=%v", f.Error(), f.Loading())
	}
	if refreshed != 0 {
		t.Fatalf("refresh after failed verification")
	}
}

func TestSubmitWhileBusy(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{}
	f := newForm(p, w, nil)
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("second submit = %v", err)
	}
	if len(p.orders) != 1 {
		t.Fatalf("orders = %d", len(p.orders))
	}
}

func TestWidgetOpenError(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	f := newForm(p, &fakeWidget{openErr: errors.New("no browser")}, nil)
	f.SetAmount("500")
	err := f.Submit(context.Background())
	var werr *WidgetError
	if !errors.As(err, &werr) {
		t.Fatalf("expected widget error, got %v", err)
	}
	if f.Loading() || f.Error() != MsgProcessFailed {
		t.Fatalf("loading=%v err=%q", f.Loading(), f.Error())
	}
}

func TestResetAbandonsAttempt(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{}
	f := newForm(p, w, nil)
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.Reset()
	if f.Loading() || f.Amount() != "" || f.Phase() != PhaseIdle {
		t.Fatalf("reset left loading=%v amount=%q phase=%s", f.Loading(), f.Amount(), f.Phase())
	}
	w.handlers.OnComplete(domain.PaymentConfirmation{PaymentID: "p", OrderID: "o", Signature: "s"})
	if len(p.verified) != 0 {
		t.Fatalf("late callback verified")
	}
}

func TestWaitWithoutAttempt(t *testing.T) {
	f := newForm(&fakePayments{}, &fakeWidget{}, nil)
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrNoAttempt) {
		t.Fatalf("err = %v", err)
	}
}

func TestWaitReturnsAfterRefresh(t *testing.T) {
	p := &fakePayments{order: scenarioOrder()}
	w := &fakeWidget{onOpen: func(h Handlers) {
		go h.OnComplete(domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "s"})
	}}
	var refreshed atomic.Int32
	f := newForm(p, w, func(context.Context, domain.VerificationResult) {
		time.Sleep(50 * time.Millisecond)
		refreshed.Add(1)
	})
	f.SetAmount("500")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out := waitOutcome(t, f)
	if out.Phase != PhaseSettled {
		t.Fatalf("outcome = %+v", out)
	}
	if n := refreshed.Load(); n != 1 {
		t.Fatalf("refreshed %d times when Wait returned", n)
	}
}
