package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"ngoledger/internal/domain"
	"ngoledger/internal/gateway/razorpay"
	"ngoledger/internal/infra"
	"ngoledger/internal/ledger"
	"ngoledger/internal/middleware"
)

// App carries the dependencies shared by every handler.
type App struct {
	Users        domain.UserRepository
	NGOs         domain.NGORepository
	Transactions domain.TransactionRepository
	Orders       domain.OrderRepository
	Gateway      razorpay.Gateway
	Ledger       ledger.Recorder
	Currency     string
	Logger       *infra.Logger

	// NewToken generates API token keys; nil uses 20 random bytes as hex.
	NewToken func() (string, error)
	Now      func() time.Time

	// recordMu orders ledger hashing with the append that stores the hash.
	recordMu sync.Mutex
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error answers {"error": msg}; code names the failure class for logs.
func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		a.logger().Warn().Int("status", status).Str("code", code).Msg(msg)
	}
	a.json(w, status, map[string]string{"error": msg})
}

// authError answers in the {"success": false, "error": msg} envelope of the
// user endpoints.
func (a *App) authError(w http.ResponseWriter, status int, msg string) {
	a.json(w, status, map[string]any{"success": false, "error": msg})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) logger() *infra.Logger {
	if a.Logger == nil {
		a.Logger = infra.DiscardLogger()
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) newToken() (string, error) {
	if a.NewToken != nil {
		return a.NewToken()
	}
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (a *App) currency() string {
	if a.Currency == "" {
		return "INR"
	}
	return a.Currency
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

// present converts a stored transaction into its wire form.
func present(tx domain.Transaction) domain.Transaction {
	tx.Amount = domain.FromMinor(tx.AmountMinor)
	return tx
}

// record hashes tx onto the ledger and appends it to the store.
func (a *App) record(ctx context.Context, tx *domain.Transaction, reference string) error {
	a.recordMu.Lock()
	defer a.recordMu.Unlock()
	hash, err := a.Ledger.Record(ctx, ledger.Entry{
		NGOID:       tx.NGOID,
		Type:        tx.Type,
		AmountMinor: tx.AmountMinor,
		Reference:   reference,
		At:          a.now(),
	})
	if err != nil {
		return err
	}
	tx.BlockchainHash = hash
	tx.Status = domain.TransactionCompleted
	return a.Transactions.Append(ctx, tx)
}

// amount accepts a JSON number or a numeric string; form inputs send both.
type amount float64

func (m *amount) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.ErrInvalidAmount
	}
	*m = amount(v)
	return nil
}

func presentAll(items []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(items))
	for _, tx := range items {
		out = append(out, present(tx))
	}
	return out
}
