package hosted

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"ngoledger/internal/checkout"
	"ngoledger/internal/domain"
)

type recorder struct {
	mu        sync.Mutex
	completed []domain.PaymentConfirmation
	failures  []checkout.Failure
	dismissed int
	signal    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{signal: make(chan struct{}, 8)}
}

func (r *recorder) handlers() checkout.Handlers {
	return checkout.Handlers{
		OnComplete: func(c domain.PaymentConfirmation) {
			r.mu.Lock()
			r.completed = append(r.completed, c)
			r.mu.Unlock()
			r.signal <- struct{}{}
		},
		OnFail: func(f checkout.Failure) {
			r.mu.Lock()
			r.failures = append(r.failures, f)
			r.mu.Unlock()
			r.signal <- struct{}{}
		},
		OnDismiss: func() {
			r.mu.Lock()
			r.dismissed++
			r.mu.Unlock()
			r.signal <- struct{}{}
		},
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for callback")
	}
}

func openWidget(t *testing.T, ctx context.Context, rec *recorder) string {
	t.Helper()
	urls := make(chan string, 1)
	w := New(Options{Launch: func(u string) error { urls <- u; return nil }})
	opts := checkout.NewOptions(domain.Order{Key: "k1", Amount: 50000, Currency: "INR", OrderID: "order_1"}, "john_doe")
	if err := w.Open(ctx, opts, rec.handlers()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return <-urls
}

func post(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestPageCarriesOptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder()
	base := openWidget(t, ctx, rec)

	resp, err := http.Get(base)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)
	for _, want := range []string{DefaultScriptURL, `"order_id":"order_1"`, `"key":"k1"`, `"amount":50000`, `"color":"#4F46E5"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestFirstCallbackWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder()
	base := openWidget(t, ctx, rec)

	if code := post(t, base+"complete", `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_1","razorpay_signature":"sig_1"}`); code != http.StatusNoContent {
		t.Fatalf("complete status = %d", code)
	}
	rec.wait(t)

	// The server shuts down after settling; a late call either fails to
	// connect or is ignored.
	if resp, err := http.Post(base+"dismiss", "application/json", nil); err == nil {
		resp.Body.Close()
	}
	cancel()
	time.Sleep(50 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.completed) != 1 || rec.completed[0].PaymentID != "pay_1" {
		t.Fatalf("completed = %+v", rec.completed)
	}
	if rec.dismissed != 0 {
		t.Fatalf("dismiss fired after completion")
	}
}

func TestIncompleteConfirmationRejected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder()
	base := openWidget(t, ctx, rec)

	if code := post(t, base+"complete", `{"razorpay_payment_id":"pay_1"}`); code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
	if code := post(t, base+"failed", `{"code":"BAD_REQUEST_ERROR","description":"Insufficient funds"}`); code != http.StatusNoContent {
		t.Fatalf("failed status = %d", code)
	}
	rec.wait(t)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.completed) != 0 || len(rec.failures) != 1 || rec.failures[0].Description != "Insufficient funds" {
		t.Fatalf("completed=%v failures=%v", rec.completed, rec.failures)
	}
}

func TestContextCancelDismisses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()
	openWidget(t, ctx, rec)
	cancel()
	rec.wait(t)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.dismissed != 1 {
		t.Fatalf("dismissed = %d", rec.dismissed)
	}
}
