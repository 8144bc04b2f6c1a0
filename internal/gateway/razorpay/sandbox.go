package razorpay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ngoledger/internal/domain"
)

// SandboxKey is the public key the sandbox hands to widgets.
const SandboxKey = "rzp_test_sandbox"

// Sandbox is a local gateway for development. It issues order ids itself and
// signs payments with a local secret, so no network access is needed.
type Sandbox struct {
	secret string
	mu     sync.Mutex
	orders map[string]OrderResponse
}

// NewSandbox returns a sandbox gateway; an empty secret gets a random one.
func NewSandbox(secret string) *Sandbox {
	if strings.TrimSpace(secret) == "" {
		secret = uuid.NewString()
	}
	return &Sandbox{secret: secret, orders: make(map[string]OrderResponse)}
}

func (s *Sandbox) Key() string {
	return SandboxKey
}

func (s *Sandbox) CreateOrder(_ context.Context, req OrderRequest) (*OrderResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("razorpay sandbox: %w", domain.ErrInvalidAmount)
	}
	order := OrderResponse{
		ID:        "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Entity:    "order",
		Amount:    req.Amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Status:    "created",
		CreatedAt: time.Now().Unix(),
	}
	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()
	return &order, nil
}

func (s *Sandbox) VerifySignature(orderID, paymentID, signature string) bool {
	return Verify(s.secret, orderID, paymentID, signature)
}

// Pay simulates a successful checkout of orderID and returns its confirmation.
func (s *Sandbox) Pay(orderID string) (domain.PaymentConfirmation, error) {
	s.mu.Lock()
	_, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok {
		return domain.PaymentConfirmation{}, fmt.Errorf("razorpay sandbox: order %s: %w", orderID, domain.ErrNotFound)
	}
	paymentID := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return domain.PaymentConfirmation{
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: Sign(s.secret, orderID, paymentID),
	}, nil
}
