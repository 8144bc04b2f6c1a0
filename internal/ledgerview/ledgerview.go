// Package ledgerview loads the public views of an NGO's ledger.
package ledgerview

import (
	"context"
	"sync"

	"ngoledger/internal/checkout"
	"ngoledger/internal/client"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// API is the read side of the client used by the views.
type API interface {
	ListNGOs(ctx context.Context) ([]domain.NGO, error)
	NGODetail(ctx context.Context, ngoID int64) (*domain.NGODetail, error)
	Incoming(ctx context.Context, ngoID int64) ([]domain.Transaction, error)
	ListTransactions(ctx context.Context, filter client.TransactionFilter) ([]domain.Transaction, error)
}

// List returns every NGO.
func List(ctx context.Context, api API) ([]domain.NGO, error) {
	return api.ListNGOs(ctx)
}

// Search runs a filtered transaction search.
func Search(ctx context.Context, api API, filter client.TransactionFilter) ([]domain.Transaction, error) {
	return api.ListTransactions(ctx, filter)
}

// Detail is one NGO with its donations and expenses.
type Detail struct {
	api    API
	id     int64
	logger *infra.Logger

	mu     sync.RWMutex
	detail domain.NGODetail
}

// LoadDetail fetches the NGO once.
func LoadDetail(ctx context.Context, api API, ngoID int64, logger *infra.Logger) (*Detail, error) {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	d, err := api.NGODetail(ctx, ngoID)
	if err != nil {
		return nil, err
	}
	return &Detail{api: api, id: ngoID, logger: logger, detail: *d}, nil
}

// NGO returns a snapshot of the loaded detail.
func (d *Detail) NGO() domain.NGODetail {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := d.detail
	out.WorkImages = append([]string(nil), d.detail.WorkImages...)
	out.Incoming = append([]domain.Transaction(nil), d.detail.Incoming...)
	out.Outgoing = append([]domain.Transaction(nil), d.detail.Outgoing...)
	return out
}

// Refresh re-reads the donation list only.
func (d *Detail) Refresh(ctx context.Context) error {
	incoming, err := d.api.Incoming(ctx, d.id)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.detail.Incoming = incoming
	d.mu.Unlock()
	return nil
}

// Notifier adapts Refresh for the donation form.
func (d *Detail) Notifier() checkout.RefreshNotifier {
	return func(ctx context.Context, _ domain.VerificationResult) {
		if err := d.Refresh(ctx); err != nil {
			d.logger.Warn().Err(err).Int64("ngo_id", d.id).Msg("ledgerview: refresh after donation failed")
		}
	}
}

// Totals sums a ledger in minor units.
type Totals struct {
	DonatedMinor int64
	SpentMinor   int64
}

// BalanceMinor is donations minus expenses.
func (t Totals) BalanceMinor() int64 {
	return t.DonatedMinor - t.SpentMinor
}

func (d *Detail) Totals() Totals {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var t Totals
	for _, tx := range d.detail.Incoming {
		t.DonatedMinor += domain.ToMinor(tx.Amount)
	}
	for _, tx := range d.detail.Outgoing {
		t.SpentMinor += domain.ToMinor(tx.Amount)
	}
	return t
}

// Balance is donations minus expenses in major units.
func (d *Detail) Balance() float64 {
	return domain.FromMinor(d.Totals().BalanceMinor())
}
