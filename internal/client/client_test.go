package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"ngoledger/internal/domain"
)

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", HTTPClient: srv.Client(), Tokens: StaticToken(token)})
}

func TestLoginSendsCredentialsWithoutToken(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/login/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["username"] != "ngo_admin_1" || body["password"] != "password123" {
			t.Fatalf("unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"token":"abc","username":"ngo_admin_1","is_ngo_admin":true,"ngo_id":1}}`)
	})

	res, err := c.Login(context.Background(), "ngo_admin_1", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "abc" || !res.IsNGOAdmin || res.NGOID == nil || *res.NGOID != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	c := newTestClient(t, "tok123", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token tok123" {
			t.Fatalf("authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"id":3,"name":"Clean Water Initiative","work_images":[]}`)
	})
	ngo, err := c.AdminNGO(context.Background())
	if err != nil {
		t.Fatalf("admin ngo: %v", err)
	}
	if ngo.ID != 3 {
		t.Fatalf("id = %d", ngo.ID)
	}
}

func TestRejectionUsesBackendMessage(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"error":"Invalid credentials"}`)
	})
	_, err := c.Login(context.Background(), "x", "y")
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.Kind != KindRejection || ce.Status != http.StatusUnauthorized || ce.Message != "Invalid credentials" {
		t.Fatalf("unexpected error %+v", ce)
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized in chain")
	}
	if !IsRejection(err) || IsNetwork(err) {
		t.Fatalf("classification wrong for %v", err)
	}
}

func TestRejectionFallbackMessages(t *testing.T) {
	c := newTestClient(t, "t", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `oops`)
	})
	ctx := context.Background()
	cases := []struct {
		name string
		call func() error
		want string
	}{
		{"register", func() error { _, err := c.Register(ctx, "a", "b"); return err }, "Registration failed"},
		{"list", func() error { _, err := c.ListNGOs(ctx); return err }, "Failed to fetch NGOs"},
		{"detail", func() error { _, err := c.NGODetail(ctx, 1); return err }, "Failed to fetch NGO details"},
		{"incoming", func() error { _, err := c.Incoming(ctx, 1); return err }, "Failed to fetch incoming transactions"},
		{"outgoing", func() error { _, err := c.Outgoing(ctx, 1); return err }, "Failed to fetch outgoing transactions"},
		{"expense", func() error { _, err := c.AddExpense(ctx, 1, ExpenseInput{Amount: 1}); return err }, "Failed to add outgoing transaction"},
		{"admin", func() error { _, err := c.AdminNGO(ctx); return err }, "Failed to fetch NGO"},
		{"update", func() error { _, err := c.UpdateNGO(ctx, 1, domain.NGOUpdate{}); return err }, "Failed to update NGO"},
		{"order", func() error { _, err := c.CreateOrder(ctx, 1, 10); return err }, "Failed to create order"},
		{"verify", func() error { _, err := c.VerifyPayment(ctx, domain.PaymentConfirmation{}); return err }, "Failed to verify payment"},
		{"transactions", func() error { _, err := c.ListTransactions(ctx, TransactionFilter{}); return err }, "Failed to fetch transactions"},
		{"transaction", func() error { _, err := c.Transaction(ctx, 9); return err }, "Failed to fetch transaction details"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if err == nil || err.Error() != tc.want {
				t.Fatalf("got %v, want %q", err, tc.want)
			}
		})
	}
}

func TestNotFoundUnwrapsToDomainSentinel(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NGO not found"}`)
	})
	_, err := c.NGODetail(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "NGO not found" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base})
	_, err := c.ListNGOs(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err.Error() != "Failed to fetch NGOs" {
		t.Fatalf("message = %q", err.Error())
	}
	var ce *Error
	errors.As(err, &ce)
	if ce.Err == nil {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestCreateOrderKeepsDescriptor(t *testing.T) {
	c := newTestClient(t, "t", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions/create-order/2/" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["amount"] != 500 {
			t.Fatalf("amount = %v", body["amount"])
		}
		_, _ = io.WriteString(w, `{"key":"rzp_test","amount":50000,"currency":"INR","order_id":"order_1"}`)
	})
	order, err := c.CreateOrder(context.Background(), 2, 500)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Amount != 50000 || order.OrderID != "order_1" || order.Key != "rzp_test" || order.NGOID != 2 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestVerifyPaymentForwardsConfirmation(t *testing.T) {
	c := newTestClient(t, "t", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["razorpay_payment_id"] != "pay_1" || body["razorpay_order_id"] != "order_1" || body["razorpay_signature"] != "sig" {
			t.Fatalf("unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"success":true,"transaction":{"id":7,"ngo_id":2,"transaction_type":"donation","amount":500}}`)
	})
	res, err := c.VerifyPayment(context.Background(), domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Success || res.Transaction == nil || res.Transaction.ID != 7 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTransactionFilterQuery(t *testing.T) {
	cases := []struct {
		name   string
		filter TransactionFilter
		want   url.Values
	}{
		{"empty", TransactionFilter{}, url.Values{"sort_order": {"desc"}}},
		{"asc", TransactionFilter{SortOrder: "ASC"}, url.Values{"sort_order": {"asc"}}},
		{"bogus order", TransactionFilter{SortOrder: "sideways"}, url.Values{"sort_order": {"desc"}}},
		{"full", TransactionFilter{UserID: "john_doe", NGOID: 3, MinAmount: 10, MaxAmount: 99.5, SortOrder: "asc"}, url.Values{
			"user_id":    {"john_doe"},
			"ngo_id":     {"3"},
			"min_amount": {"10"},
			"max_amount": {"99.5"},
			"sort_order": {"asc"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := url.ParseQuery(tc.filter.Query())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got.Encode() != tc.want.Encode() {
				t.Fatalf("got %q, want %q", got.Encode(), tc.want.Encode())
			}
		})
	}
}

func TestListTransactionsSendsQuery(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions/list/" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ngo_id"); got != "4" {
			t.Fatalf("ngo_id = %q", got)
		}
		_, _ = io.WriteString(w, `[{"id":1},{"id":2}]`)
	})
	txs, err := c.ListTransactions(context.Background(), TransactionFilter{NGOID: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d", len(txs))
	}
}
