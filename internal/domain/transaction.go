package domain

import (
	"math"
	"time"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionDonation TransactionType = "donation"
	TransactionExpense  TransactionType = "expense"
)

// Valid reports whether t is a known direction.
func (t TransactionType) Valid() bool {
	return t == TransactionDonation || t == TransactionExpense
}

// TransactionStatus mirrors the gateway outcome recorded with an entry.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry. Amount is expressed in major
// units on the wire; AmountMinor is the stored representation.
type Transaction struct {
	ID                int64             `json:"id"`
	NGOID             int64             `json:"ngo_id"`
	NGOName           string            `json:"ngo,omitempty"`
	Type              TransactionType   `json:"transaction_type"`
	Amount            float64           `json:"amount"`
	AmountMinor       int64             `json:"-"`
	Timestamp         time.Time         `json:"timestamp"`
	BlockchainHash    string            `json:"blockchain_hash"`
	ProofURL          string            `json:"proof_url,omitempty"`
	Description       string            `json:"description,omitempty"`
	UserID            *string           `json:"user_id,omitempty"`
	Username          string            `json:"user,omitempty"`
	RazorpayOrderID   string            `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string            `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string            `json:"-"`
	Status            TransactionStatus `json:"status,omitempty"`
}

// TransactionFilter narrows a transaction search. Zero values are unset.
type TransactionFilter struct {
	NGOID     int64
	UserID    string
	Type      TransactionType
	MinAmount int64
	MaxAmount int64
	Ascending bool
}

// ToMinor converts a major-unit amount into minor units (two decimals).
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinor converts minor units back into a major-unit amount.
func FromMinor(minor int64) float64 {
	return float64(minor) / 100
}

// ValidAmount reports whether amount is a positive finite number whose
// minor-unit value fits in an int64.
func ValidAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount) && amount*100 < math.MaxInt64
}
