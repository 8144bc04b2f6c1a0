package domain

import "context"

// UserRepository defines access methods for users and their API tokens.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// TokenFor returns the user's token, creating it with newKey when absent.
	TokenFor(ctx context.Context, userID, newKey string) (string, error)
	UserIDForToken(ctx context.Context, key string) (string, error)
}

// NGORepository handles NGO persistence.
type NGORepository interface {
	Create(ctx context.Context, ngo *NGO) error
	List(ctx context.Context) ([]NGO, error)
	GetByID(ctx context.Context, id int64) (*NGO, error)
	FirstByAdmin(ctx context.Context, adminID string) (*NGO, error)
	Update(ctx context.Context, ngo *NGO) error
}

// TransactionRepository is append-only: ledger entries are never updated.
type TransactionRepository interface {
	Append(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)
	ListByNGO(ctx context.Context, ngoID int64, typ TransactionType) ([]Transaction, error)
	Search(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	LatestHash(ctx context.Context) (string, error)
}

// OrderRepository stores gateway orders awaiting verification.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus) error
}
