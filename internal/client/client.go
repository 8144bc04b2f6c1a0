// Package client is the typed HTTP client for the donation ledger API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// DefaultBaseURL is where a locally started API listens.
const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource yields the session token, "" when anonymous.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Options configures the API client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Tokens         TokenSource
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the backend REST API. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *infra.Logger
}

// New constructs a client with defaults for anything left unset.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, tokens: opts.Tokens, logger: logger}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RegisteredUser is the account returned by Register.
type RegisteredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ExpenseInput is the body of an expense submission.
type ExpenseInput struct {
	Amount      float64 `json:"amount"`
	ProofURL    string  `json:"proof_url"`
	Description string  `json:"description,omitempty"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	var out envelope[domain.LoginResult]
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/users/login/", body, &out, "Login failed"); err != nil {
		return nil, err
	}
	if !out.Success || out.Data.Token == "" {
		return nil, rejection("login", http.StatusOK, nonEmpty(out.Error, "Login failed"))
	}
	return &out.Data, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*RegisteredUser, error) {
	var out envelope[RegisteredUser]
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, "register", http.MethodPost, "/users/register/", body, &out, "Registration failed"); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejection("register", http.StatusOK, nonEmpty(out.Error, "Registration failed"))
	}
	return &out.Data, nil
}

func (c *Client) ListNGOs(ctx context.Context) ([]domain.NGO, error) {
	var out []domain.NGO
	if err := c.do(ctx, "list_ngos", http.MethodGet, "/ngos/", nil, &out, "Failed to fetch NGOs"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) NGODetail(ctx context.Context, ngoID int64) (*domain.NGODetail, error) {
	var out domain.NGODetail
	if err := c.do(ctx, "ngo_detail", http.MethodGet, ngoPath(ngoID, ""), nil, &out, "Failed to fetch NGO details"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Incoming(ctx context.Context, ngoID int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.do(ctx, "incoming", http.MethodGet, ngoPath(ngoID, "incoming/"), nil, &out, "Failed to fetch incoming transactions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Outgoing(ctx context.Context, ngoID int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.do(ctx, "outgoing", http.MethodGet, ngoPath(ngoID, "outgoing/"), nil, &out, "Failed to fetch outgoing transactions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddExpense(ctx context.Context, ngoID int64, in ExpenseInput) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := c.do(ctx, "add_expense", http.MethodPost, ngoPath(ngoID, "outgoing/"), in, &out, "Failed to add outgoing transaction"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminNGO(ctx context.Context) (*domain.NGO, error) {
	var out domain.NGO
	if err := c.do(ctx, "admin_ngo", http.MethodGet, "/ngos/admin/ngo/", nil, &out, "Failed to fetch NGO"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateNGO(ctx context.Context, ngoID int64, update domain.NGOUpdate) (*domain.NGO, error) {
	var out domain.NGO
	path := "/ngos/admin/ngo/" + strconv.FormatInt(ngoID, 10) + "/"
	if err := c.do(ctx, "update_ngo", http.MethodPut, path, update, &out, "Failed to update NGO"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder asks the backend for a gateway order covering amount.
func (c *Client) CreateOrder(ctx context.Context, ngoID int64, amount float64) (*domain.Order, error) {
	var out domain.Order
	path := "/transactions/create-order/" + strconv.FormatInt(ngoID, 10) + "/"
	if err := c.do(ctx, "create_order", http.MethodPost, path, map[string]float64{"amount": amount}, &out, "Failed to create order"); err != nil {
		return nil, err
	}
	out.NGOID = ngoID
	return &out, nil
}

// VerifyPayment forwards the widget confirmation verbatim.
func (c *Client) VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) (*domain.VerificationResult, error) {
	var out domain.VerificationResult
	if err := c.do(ctx, "verify_payment", http.MethodPost, "/transactions/payment/verify/", conf, &out, "Failed to verify payment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.do(ctx, "list_transactions", http.MethodGet, "/transactions/list/?"+filter.Query(), nil, &out, "Failed to fetch transactions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Transaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	var out domain.Transaction
	path := "/transactions/" + strconv.FormatInt(id, 10) + "/"
	if err := c.do(ctx, "transaction", http.MethodGet, path, nil, &out, "Failed to fetch transaction details"); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request. Non-2xx answers become rejections carrying the
// backend's error field, or fallback when it has none.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindNetwork, Op: op, Message: fallback, Err: fmt.Errorf("client: encode request: %w", err)}
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: fallback, Err: fmt.Errorf("client: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("client: request failed")
		return &Error{Kind: KindNetwork, Op: op, Message: fallback, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: fallback, Err: fmt.Errorf("client: read response: %w", err)}
	}
	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("client: response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &detail)
		return rejection(op, resp.StatusCode, nonEmpty(strings.TrimSpace(detail.Error), fallback))
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindRejection, Op: op, Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("client: decode response: %w", err)}
	}
	return nil
}

func ngoPath(id int64, suffix string) string {
	return "/ngos/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// TransactionFilter narrows a transaction search. Zero values are left out
// of the query; SortOrder defaults to "desc".
type TransactionFilter struct {
	UserID    string
	NGOID     int64
	MinAmount float64
	MaxAmount float64
	SortOrder string
}

// Query encodes the filter as URL query parameters.
func (f TransactionFilter) Query() string {
	q := url.Values{}
	if f.UserID != "" {
		q.Set("user_id", f.UserID)
	}
	if f.MinAmount > 0 {
		q.Set("min_amount", strconv.FormatFloat(f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount > 0 {
		q.Set("max_amount", strconv.FormatFloat(f.MaxAmount, 'f', -1, 64))
	}
	if f.NGOID > 0 {
		q.Set("ngo_id", strconv.FormatInt(f.NGOID, 10))
	}
	order := strings.ToLower(f.SortOrder)
	if order != "asc" {
		order = "desc"
	}
	q.Set("sort_order", order)
	return q.Encode()
}
