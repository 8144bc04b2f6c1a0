package domain

import "time"

// OrderStatus tracks a gateway order server side.
type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// Order is a gateway-issued descriptor authorising one checkout attempt.
// Amount is in the gateway's minor units.
type Order struct {
	OrderID   string      `json:"order_id"`
	Key       string      `json:"key"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	NGOID     int64       `json:"ngo_id,omitempty"`
	UserID    string      `json:"-"`
	Status    OrderStatus `json:"-"`
	CreatedAt time.Time   `json:"-"`
}

// PaymentConfirmation is the proof returned by the checkout widget.
type PaymentConfirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Complete reports whether every field is present.
func (p PaymentConfirmation) Complete() bool {
	return p.PaymentID != "" && p.OrderID != "" && p.Signature != ""
}

// VerificationResult is what the backend answers after verifying a payment.
type VerificationResult struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction,omitempty"`
}
