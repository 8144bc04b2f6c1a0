package repo

import (
	"context"
	"errors"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/sqlinline"
)

// TransactionRepositoryPG implements the append-only ledger on PostgreSQL.
type TransactionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTransactionRepository creates a new transaction repo.
func NewTransactionRepository(sql infra.SQLExecutor) *TransactionRepositoryPG {
	return &TransactionRepositoryPG{sql: sql}
}

// Append inserts a ledger entry. The hash must already be set.
func (r *TransactionRepositoryPG) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx.BlockchainHash == "" {
		return errors.New("blockchain hash is required")
	}
	if tx.Status == "" {
		tx.Status = domain.TransactionCompleted
	}
	userID := ""
	if tx.UserID != nil {
		userID = *tx.UserID
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertTransaction,
		tx.NGOID, userID, string(tx.Type), tx.AmountMinor, tx.BlockchainHash, tx.ProofURL, tx.Description,
		tx.RazorpayOrderID, tx.RazorpayPaymentID, tx.RazorpaySignature, string(tx.Status))
	if err := row.Scan(&tx.ID, &tx.Timestamp); err != nil {
		if infra.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	tx.Amount = domain.FromMinor(tx.AmountMinor)
	return nil
}

// GetByID fetches one ledger entry.
func (r *TransactionRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	return scanTransaction(r.sql.QueryRow(ctx, sqlinline.QSelectTransactionByID, id))
}

// GetByPaymentID finds the donation recorded for a gateway payment.
func (r *TransactionRepositoryPG) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Transaction, error) {
	return scanTransaction(r.sql.QueryRow(ctx, sqlinline.QSelectTransactionByPaymentID, paymentID))
}

// ListByNGO returns the NGO's entries of one direction, newest first.
func (r *TransactionRepositoryPG) ListByNGO(ctx context.Context, ngoID int64, typ domain.TransactionType) ([]domain.Transaction, error) {
	return r.list(ctx, sqlinline.QListTransactionsByNGO, ngoID, string(typ))
}

// Search applies the filter; zero fields are ignored.
func (r *TransactionRepositoryPG) Search(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	return r.list(ctx, sqlinline.QSearchTransactions, f.NGOID, f.UserID, string(f.Type), f.MinAmount, f.MaxAmount, f.Ascending)
}

// LatestHash returns the most recent ledger hash or "" for an empty ledger.
func (r *TransactionRepositoryPG) LatestHash(ctx context.Context) (string, error) {
	var hash string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectLatestHash).Scan(&hash); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

func (r *TransactionRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx     domain.Transaction
		typ    string
		status string
	)
	err := row.Scan(&tx.ID, &tx.NGOID, &tx.NGOName, &typ, &tx.AmountMinor, &tx.Timestamp, &tx.BlockchainHash,
		&tx.ProofURL, &tx.Description, &tx.UserID, &tx.Username, &tx.RazorpayOrderID, &tx.RazorpayPaymentID, &status)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	tx.Type = domain.TransactionType(typ)
	tx.Status = domain.TransactionStatus(status)
	tx.Amount = domain.FromMinor(tx.AmountMinor)
	return &tx, nil
}

var _ domain.TransactionRepository = (*TransactionRepositoryPG)(nil)
