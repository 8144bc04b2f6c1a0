package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// ErrMissingCredentials indicates that the client was configured without a key pair.
var ErrMissingCredentials = errors.New("razorpay: key id and secret are required")

// Gateway is what the payment handlers need from a payment provider.
type Gateway interface {
	// Key is the public key id handed to the checkout widget.
	Key() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// OrderRequest asks the gateway for a new order. Amount is in minor units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// OrderResponse is the subset of the gateway order entity we rely on.
type OrderResponse struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Options configures the Razorpay client.
type Options struct {
	KeyID          string
	KeySecret      string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client talks to the Razorpay orders API.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with defaults for anything left unset.
func NewClient(opts Options) (*Client, error) {
	keyID := strings.TrimSpace(opts.KeyID)
	secret := strings.TrimSpace(opts.KeySecret)
	if keyID == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{keyID: keyID, keySecret: secret, baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// Key returns the public key id.
func (c *Client) Key() string {
	return c.keyID
}

// CreateOrder registers an order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("razorpay: %w", domain.ErrInvalidAmount)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay: %w: %v", domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Description != "" {
			return nil, fmt.Errorf("razorpay: %w: %s (%s)", domain.ErrGatewayFailure, detail.Error.Description, detail.Error.Code)
		}
		return nil, fmt.Errorf("razorpay: %w: status %d: %s", domain.ErrGatewayFailure, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var order OrderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("razorpay: decode response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay: %w: empty order id", domain.ErrGatewayFailure)
	}
	c.logger.Debug().Str("order_id", order.ID).Int64("amount", order.Amount).Msg("razorpay: order created")
	return &order, nil
}

// VerifySignature checks the checkout signature against the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return Verify(c.keySecret, orderID, paymentID, signature)
}

// Sign computes the checkout signature: hex HMAC-SHA256 of "order_id|payment_id".
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches orderID and paymentID under secret.
func Verify(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
