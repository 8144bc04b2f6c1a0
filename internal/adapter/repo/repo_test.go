package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ngoledger/internal/domain"
	"ngoledger/internal/sqlinline"
)

type call struct {
	query string
	args  []any
}

type stubExecutor struct {
	calls   []call
	row     pgx.Row
	rows    pgx.Rows
	tag     pgconn.CommandTag
	execErr error
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	return s.tag, s.execErr
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, call{query: query, args: args})
	return s.row
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	return s.rows, nil
}

type funcRow func(dest ...any) error

func (f funcRow) Scan(dest ...any) error { return f(dest...) }

type txRows struct {
	pgx.Rows
	items []domain.Transaction
	idx   int
}

func (r *txRows) Next() bool {
	if r.idx >= len(r.items) {
		return false
	}
	r.idx++
	return true
}

func (r *txRows) Scan(dest ...any) error {
	tx := r.items[r.idx-1]
	*dest[0].(*int64) = tx.ID
	*dest[1].(*int64) = tx.NGOID
	*dest[2].(*string) = tx.NGOName
	*dest[3].(*string) = string(tx.Type)
	*dest[4].(*int64) = tx.AmountMinor
	*dest[5].(*time.Time) = tx.Timestamp
	*dest[6].(*string) = tx.BlockchainHash
	*dest[7].(*string) = tx.ProofURL
	*dest[8].(*string) = tx.Description
	*dest[9].(**string) = tx.UserID
	*dest[10].(*string) = tx.Username
	*dest[11].(*string) = tx.RazorpayOrderID
	*dest[12].(*string) = tx.RazorpayPaymentID
	*dest[13].(*string) = string(tx.Status)
	return nil
}

func (r *txRows) Err() error { return nil }
func (r *txRows) Close()     {}

func TestTransactionAppendRequiresHash(t *testing.T) {
	repo := NewTransactionRepository(&stubExecutor{})
	err := repo.Append(context.Background(), &domain.Transaction{NGOID: 1, Type: domain.TransactionExpense, AmountMinor: 100})
	if err == nil {
		t.Fatalf("expected error for missing hash")
	}
}

func TestTransactionAppendScansGeneratedFields(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	exec := &stubExecutor{row: funcRow(func(dest ...any) error {
		*dest[0].(*int64) = 42
		*dest[1].(*time.Time) = created
		return nil
	})}
	repo := NewTransactionRepository(exec)
	userID := "5b0c9f0e-8d39-4b5c-9b0c-0c1d2e3f4a5b"
	tx := &domain.Transaction{
		NGOID:          7,
		Type:           domain.TransactionDonation,
		AmountMinor:    50000,
		BlockchainHash: "0xabc",
		UserID:         &userID,
	}
	if err := repo.Append(context.Background(), tx); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if tx.ID != 42 || !tx.Timestamp.Equal(created) {
		t.Fatalf("generated fields not scanned: %+v", tx)
	}
	if tx.Amount != 500 {
		t.Fatalf("amount = %v, want 500", tx.Amount)
	}
	if tx.Status != domain.TransactionCompleted {
		t.Fatalf("status = %q, want completed", tx.Status)
	}
	got := exec.calls[0]
	if got.query != sqlinline.QInsertTransaction {
		t.Fatalf("unexpected query")
	}
	if got.args[1] != userID || got.args[2] != "donation" || got.args[3] != int64(50000) {
		t.Fatalf("unexpected args: %#v", got.args)
	}
}

func TestTransactionAppendMapsDuplicatePayment(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error {
		return &pgconn.PgError{Code: "23505"}
	})}
	repo := NewTransactionRepository(exec)
	err := repo.Append(context.Background(), &domain.Transaction{NGOID: 1, Type: domain.TransactionDonation, AmountMinor: 1, BlockchainHash: "0x1"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestTransactionSearchPassesFilterInOrder(t *testing.T) {
	exec := &stubExecutor{rows: &txRows{items: []domain.Transaction{{
		ID: 1, NGOID: 2, NGOName: "Food for All", Type: domain.TransactionDonation, AmountMinor: 12550,
		BlockchainHash: "0x01", Username: "john_doe", Status: domain.TransactionCompleted,
	}}}}
	repo := NewTransactionRepository(exec)
	items, err := repo.Search(context.Background(), domain.TransactionFilter{NGOID: 2, UserID: "john_doe", MinAmount: 100, MaxAmount: 90000, Ascending: true})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(items) != 1 || items[0].Amount != 125.5 || items[0].Type != domain.TransactionDonation {
		t.Fatalf("unexpected items: %+v", items)
	}
	args := exec.calls[0].args
	want := []any{int64(2), "john_doe", "", int64(100), int64(90000), true}
	if len(args) != len(want) {
		t.Fatalf("args = %#v, want %#v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %#v, want %#v", i, args[i], want[i])
		}
	}
}

func TestTransactionLatestHashEmptyLedger(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error { return pgx.ErrNoRows })}
	hash, err := NewTransactionRepository(exec).LatestHash(context.Background())
	if err != nil {
		t.Fatalf("LatestHash error: %v", err)
	}
	if hash != "" {
		t.Fatalf("hash = %q, want empty", hash)
	}
}

func TestNGOGetByIDNotFound(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error { return pgx.ErrNoRows })}
	_, err := NewNGORepository(exec).GetByID(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNGOScanDefaultsWorkImages(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error {
		*dest[0].(*int64) = 3
		*dest[1].(*string) = "Help the Earth"
		*dest[6].(*string) = "ngo_admin_1"
		return nil
	})}
	ngo, err := NewNGORepository(exec).GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if ngo.WorkImages == nil || len(ngo.WorkImages) != 0 {
		t.Fatalf("work images = %#v, want empty slice", ngo.WorkImages)
	}
	if ngo.Admin != "ngo_admin_1" {
		t.Fatalf("admin = %q", ngo.Admin)
	}
}

func TestNGOUpdateMissingRow(t *testing.T) {
	exec := &stubExecutor{tag: pgconn.NewCommandTag("UPDATE 0")}
	err := NewNGORepository(exec).Update(context.Background(), &domain.NGO{ID: 5, Name: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	exec = &stubExecutor{tag: pgconn.NewCommandTag("UPDATE 1")}
	if err := NewNGORepository(exec).Update(context.Background(), &domain.NGO{ID: 5, Name: "x"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got := exec.calls[0].args[5].([]string); got == nil {
		t.Fatalf("work images must be sent as an empty array, not nil")
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error { return &pgconn.PgError{Code: "23505"} })}
	err := NewUserRepository(exec).Create(context.Background(), &domain.User{Username: "john_doe", PasswordHash: "x"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestUserIDForUnknownToken(t *testing.T) {
	exec := &stubExecutor{row: funcRow(func(dest ...any) error { return pgx.ErrNoRows })}
	_, err := NewUserRepository(exec).UserIDForToken(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOrderStatusUpdate(t *testing.T) {
	exec := &stubExecutor{tag: pgconn.NewCommandTag("UPDATE 1")}
	if err := NewOrderRepository(exec).UpdateStatus(context.Background(), "order_1", domain.OrderPaid); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if exec.calls[0].args[1] != "paid" {
		t.Fatalf("status arg = %#v, want paid", exec.calls[0].args[1])
	}
}
