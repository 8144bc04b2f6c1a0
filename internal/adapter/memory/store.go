// Package memory implements the repositories in process memory. It backs
// STORE=memory and the handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ngoledger/internal/domain"
)

// Store holds every table behind one lock.
type Store struct {
	mu sync.RWMutex

	users      map[string]domain.User
	tokens     map[string]string // key -> user id
	userTokens map[string]string // user id -> key
	ngos       map[int64]domain.NGO
	ledger     []domain.Transaction
	orders     map[string]domain.Order

	nextNGO int64
	nextTx  int64
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      map[string]domain.User{},
		tokens:     map[string]string{},
		userTokens: map[string]string{},
		ngos:       map[int64]domain.NGO{},
		orders:     map[string]domain.Order{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *Users               { return &Users{s: s} }
func (s *Store) NGOs() *NGOs                 { return &NGOs{s: s} }
func (s *Store) Transactions() *Transactions { return &Transactions{s: s} }
func (s *Store) Orders() *Orders             { return &Orders{s: s} }

// Users implements domain.UserRepository.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *Users) TokenFor(_ context.Context, userID, newKey string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return "", domain.ErrNotFound
	}
	if key, ok := r.s.userTokens[userID]; ok {
		return key, nil
	}
	r.s.userTokens[userID] = newKey
	r.s.tokens[newKey] = userID
	return newKey, nil
}

func (r *Users) UserIDForToken(_ context.Context, key string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.tokens[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// NGOs implements domain.NGORepository.
type NGOs struct{ s *Store }

func (r *NGOs) Create(_ context.Context, ngo *domain.NGO) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	admin, ok := r.s.users[ngo.AdminID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.nextNGO++
	ngo.ID = r.s.nextNGO
	ngo.Admin = admin.Username
	if ngo.WorkImages == nil {
		ngo.WorkImages = []string{}
	}
	r.s.ngos[ngo.ID] = cloneNGO(*ngo)
	return nil
}

func (r *NGOs) List(_ context.Context) ([]domain.NGO, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]domain.NGO, 0, len(r.s.ngos))
	for _, n := range r.s.ngos {
		items = append(items, cloneNGO(n))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *NGOs) GetByID(_ context.Context, id int64) (*domain.NGO, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.ngos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	n = cloneNGO(n)
	return &n, nil
}

func (r *NGOs) FirstByAdmin(ctx context.Context, adminID string) (*domain.NGO, error) {
	items, _ := r.List(ctx)
	for _, n := range items {
		if n.AdminID == adminID {
			n := n
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *NGOs) Update(_ context.Context, ngo *domain.NGO) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.ngos[ngo.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Name = ngo.Name
	current.Description = ngo.Description
	current.LogoURL = ngo.LogoURL
	current.CertificateURL = ngo.CertificateURL
	current.WorkImages = append([]string{}, ngo.WorkImages...)
	r.s.ngos[ngo.ID] = current
	return nil
}

func cloneNGO(n domain.NGO) domain.NGO {
	n.WorkImages = append([]string{}, n.WorkImages...)
	return n
}

// Transactions implements the append-only domain.TransactionRepository.
type Transactions struct{ s *Store }

func (r *Transactions) Append(_ context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tx.BlockchainHash == "" {
		return domain.ErrLedgerFailure
	}
	if _, ok := r.s.ngos[tx.NGOID]; !ok {
		return domain.ErrNotFound
	}
	if tx.RazorpayPaymentID != "" {
		for _, existing := range r.s.ledger {
			if existing.RazorpayPaymentID == tx.RazorpayPaymentID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.nextTx++
	tx.ID = r.s.nextTx
	tx.Timestamp = r.s.now()
	tx.Amount = domain.FromMinor(tx.AmountMinor)
	if tx.Status == "" {
		tx.Status = domain.TransactionCompleted
	}
	r.s.ledger = append(r.s.ledger, *tx)
	return nil
}

func (r *Transactions) GetByID(_ context.Context, id int64) (*domain.Transaction, error) {
	return r.find(func(tx domain.Transaction) bool { return tx.ID == id })
}

func (r *Transactions) GetByPaymentID(_ context.Context, paymentID string) (*domain.Transaction, error) {
	return r.find(func(tx domain.Transaction) bool { return paymentID != "" && tx.RazorpayPaymentID == paymentID })
}

func (r *Transactions) ListByNGO(_ context.Context, ngoID int64, typ domain.TransactionType) ([]domain.Transaction, error) {
	items := r.filter(func(tx domain.Transaction) bool { return tx.NGOID == ngoID && tx.Type == typ })
	sortTransactions(items, false)
	return items, nil
}

func (r *Transactions) Search(_ context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	items := r.filter(func(tx domain.Transaction) bool {
		if f.NGOID != 0 && tx.NGOID != f.NGOID {
			return false
		}
		if f.UserID != "" && (tx.UserID == nil || *tx.UserID != f.UserID) && tx.Username != f.UserID {
			return false
		}
		if f.Type != "" && tx.Type != f.Type {
			return false
		}
		if f.MinAmount != 0 && tx.AmountMinor < f.MinAmount {
			return false
		}
		if f.MaxAmount != 0 && tx.AmountMinor > f.MaxAmount {
			return false
		}
		return true
	})
	sortTransactions(items, f.Ascending)
	return items, nil
}

func (r *Transactions) LatestHash(_ context.Context) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.ledger) == 0 {
		return "", nil
	}
	return r.s.ledger[len(r.s.ledger)-1].BlockchainHash, nil
}

func (r *Transactions) find(match func(domain.Transaction) bool) (*domain.Transaction, error) {
	items := r.filter(match)
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return &items[0], nil
}

// filter copies matching rows and resolves the joined NGO and user names.
func (r *Transactions) filter(match func(domain.Transaction) bool) []domain.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []domain.Transaction{}
	for _, tx := range r.s.ledger {
		tx.NGOName = r.s.ngos[tx.NGOID].Name
		if tx.UserID != nil {
			tx.Username = r.s.users[*tx.UserID].Username
		}
		if match(tx) {
			items = append(items, tx)
		}
	}
	return items
}

func sortTransactions(items []domain.Transaction, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return items[i].ID < items[j].ID
		}
		return items[i].ID > items[j].ID
	})
}

// Orders implements domain.OrderRepository.
type Orders struct{ s *Store }

func (r *Orders) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.OrderID]; ok {
		return domain.ErrDuplicate
	}
	if order.Status == "" {
		order.Status = domain.OrderCreated
	}
	order.CreatedAt = r.s.now()
	r.s.orders[order.OrderID] = *order
	return nil
}

func (r *Orders) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *Orders) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	r.s.orders[orderID] = o
	return nil
}

var (
	_ domain.UserRepository        = (*Users)(nil)
	_ domain.NGORepository         = (*NGOs)(nil)
	_ domain.TransactionRepository = (*Transactions)(nil)
	_ domain.OrderRepository       = (*Orders)(nil)
)
