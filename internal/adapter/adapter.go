// Package adapter selects the storage backend behind the repository ports.
package adapter

import (
	"context"
	"fmt"

	"ngoledger/internal/adapter/memory"
	"ngoledger/internal/adapter/repo"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// Repositories bundles every repository port.
type Repositories struct {
	Users        domain.UserRepository
	NGOs         domain.NGORepository
	Transactions domain.TransactionRepository
	Orders       domain.OrderRepository
}

// Memory returns repositories over a fresh in-process store.
func Memory() *Repositories {
	store := memory.New()
	return &Repositories{
		Users:        store.Users(),
		NGOs:         store.NGOs(),
		Transactions: store.Transactions(),
		Orders:       store.Orders(),
	}
}

// Postgres returns repositories that run through the audited SQL executor.
func Postgres(sql infra.SQLExecutor) *Repositories {
	return &Repositories{
		Users:        repo.NewUserRepository(sql),
		NGOs:         repo.NewNGORepository(sql),
		Transactions: repo.NewTransactionRepository(sql),
		Orders:       repo.NewOrderRepository(sql),
	}
}

// Open builds repositories for cfg.Store. The returned close func releases
// the database pool, if any.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Repositories, func(), error) {
	switch cfg.Store {
	case infra.StoreMemory:
		return Memory(), func() {}, nil
	case infra.StorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return Postgres(infra.NewSQLRunner(pool, logger)), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}
