package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"ngoledger/internal/adapter/memory"
	"ngoledger/internal/domain"
	"ngoledger/internal/gateway/razorpay"
	"ngoledger/internal/ledger"
	"ngoledger/internal/middleware"
)

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, ledger.Entry) (string, error) {
	return "", domain.ErrLedgerFailure
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		query   string
		want    domain.TransactionFilter
		wantErr string
	}{
		{query: "", want: domain.TransactionFilter{}},
		{query: "user_id=john_doe&ngo_id=3&min_amount=10&max_amount=99.99&sort_order=asc",
			want: domain.TransactionFilter{UserID: "john_doe", NGOID: 3, MinAmount: 1000, MaxAmount: 9999, Ascending: true}},
		{query: "sort_order=DESC", want: domain.TransactionFilter{}},
		{query: "transaction_type=expense", want: domain.TransactionFilter{Type: domain.TransactionExpense}},
		{query: "ngo_id=abc", wantErr: "Invalid ngo_id"},
		{query: "min_amount=-1", wantErr: "Invalid min_amount"},
		{query: "transaction_type=refund", wantErr: "Invalid transaction_type"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/transactions/list/?"+tc.query, nil)
			got, err := parseFilter(req)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("err = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFilter: %v", err)
			}
			if got != tc.want {
				t.Fatalf("filter = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	for raw, want := range map[string]float64{`500`: 500, `"250.50"`: 250.5, `null`: 0, `""`: 0} {
		var a amount
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if float64(a) != want {
			t.Fatalf("amount(%s) = %v, want %v", raw, a, want)
		}
	}
	var a amount
	if err := json.Unmarshal([]byte(`"ten"`), &a); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestVerifyPaymentLedgerFailureKeepsOrderOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	donor := domain.User{Username: "john_doe"}
	_ = store.Users().Create(ctx, &donor)
	ngo := domain.NGO{Name: "Food for All", AdminID: donor.ID}
	_ = store.NGOs().Create(ctx, &ngo)
	sandbox := razorpay.NewSandbox("s")
	gw, _ := sandbox.CreateOrder(ctx, razorpay.OrderRequest{Amount: 1000, Currency: "INR"})
	_ = store.Orders().Create(ctx, &domain.Order{OrderID: gw.ID, NGOID: ngo.ID, UserID: donor.ID, Amount: 1000, Currency: "INR"})
	conf, _ := sandbox.Pay(gw.ID)

	app := &App{
		Users: store.Users(), NGOs: store.NGOs(), Transactions: store.Transactions(), Orders: store.Orders(),
		Gateway: sandbox, Ledger: failingRecorder{},
	}
	body, _ := json.Marshal(conf)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/payment/verify/", strings.NewReader(string(body)))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), donor.ID))
	rec := httptest.NewRecorder()
	app.VerifyPayment(rec, req)

	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Failed to record transaction on blockchain") {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body.String())
	}
	order, _ := store.Orders().GetByID(ctx, gw.ID)
	if order.Status != domain.OrderCreated {
		t.Fatalf("order status = %q, want created", order.Status)
	}
}

func TestVerifyPaymentScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner := domain.User{Username: "john_doe"}
	intruder := domain.User{Username: "jane_doe"}
	_ = store.Users().Create(ctx, &owner)
	_ = store.Users().Create(ctx, &intruder)
	ngo := domain.NGO{Name: "Food for All", AdminID: owner.ID}
	_ = store.NGOs().Create(ctx, &ngo)
	sandbox := razorpay.NewSandbox("s")
	gw, _ := sandbox.CreateOrder(ctx, razorpay.OrderRequest{Amount: 1000, Currency: "INR"})
	_ = store.Orders().Create(ctx, &domain.Order{OrderID: gw.ID, NGOID: ngo.ID, UserID: owner.ID, Amount: 1000, Currency: "INR"})
	conf, _ := sandbox.Pay(gw.ID)

	app := &App{Orders: store.Orders(), Transactions: store.Transactions(), Gateway: sandbox, Ledger: ledger.NewHashChain(nil, nil)}
	body, _ := json.Marshal(conf)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), intruder.ID))
	rec := httptest.NewRecorder()
	app.VerifyPayment(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}

func TestLoadNGORejectsBadPathID(t *testing.T) {
	app := &App{NGOs: memory.New().NGOs()}
	req := httptest.NewRequest(http.MethodGet, "/api/ngos/abc/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	app.NGODetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}

type unreachableLedger struct {
	domain.TransactionRepository
}

func (unreachableLedger) LatestHash(context.Context) (string, error) {
	return "", errors.New("connection refused")
}

func TestHealthPingsLedgerStore(t *testing.T) {
	store := memory.New()
	app := &App{Transactions: store.Transactions()}
	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthy: %d %v", rec.Code, body)
	}
	if _, ok := body["ledger_head"]; !ok {
		t.Fatalf("missing ledger_head: %v", body)
	}

	app.Transactions = unreachableLedger{}
	rec = httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "unavailable") {
		t.Fatalf("unhealthy: %d %s", rec.Code, rec.Body.String())
	}
}
