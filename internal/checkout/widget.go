// Package checkout drives one donation attempt: order creation, the external
// payment widget and server-side verification.
package checkout

import (
	"context"

	"ngoledger/internal/domain"
)

const (
	DefaultName        = "NGO Platform"
	DefaultDescription = "Donation"
	DefaultThemeColor  = "#4F46E5"
)

// Prefill seeds the widget's customer fields.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Theme struct {
	Color string `json:"color"`
}

// Options is the widget configuration. Key, Amount, Currency and OrderID
// come from the order descriptor unchanged.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// NewOptions builds widget options for order, prefilled with username.
func NewOptions(order domain.Order, username string) Options {
	return Options{
		Key:         order.Key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        DefaultName,
		Description: DefaultDescription,
		OrderID:     order.OrderID,
		Prefill:     Prefill{Name: username},
		Theme:       Theme{Color: DefaultThemeColor},
	}
}

// Failure is the widget's payment.failed payload.
type Failure struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Handlers receive the widget outcome. Any of them may be called from any
// goroutine; callers must tolerate more than one call.
type Handlers struct {
	OnComplete func(domain.PaymentConfirmation)
	OnFail     func(Failure)
	OnDismiss  func()
}

// Widget hands control to the payment gateway's checkout UI. Open returns
// once the widget is showing; the outcome arrives through Handlers.
type Widget interface {
	Open(ctx context.Context, opts Options, h Handlers) error
}

// WidgetFunc adapts a function to Widget.
type WidgetFunc func(ctx context.Context, opts Options, h Handlers) error

func (f WidgetFunc) Open(ctx context.Context, opts Options, h Handlers) error {
	return f(ctx, opts, h)
}

// RefreshNotifier is told about every settled verification.
type RefreshNotifier func(ctx context.Context, result domain.VerificationResult)
