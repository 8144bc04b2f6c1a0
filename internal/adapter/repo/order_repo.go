package repo

import (
	"context"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/sqlinline"
)

// OrderRepositoryPG stores gateway orders.
type OrderRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewOrderRepository creates a new order repo.
func NewOrderRepository(sql infra.SQLExecutor) *OrderRepositoryPG {
	return &OrderRepositoryPG{sql: sql}
}

func (r *OrderRepositoryPG) Create(ctx context.Context, order *domain.Order) error {
	if order.Status == "" {
		order.Status = domain.OrderCreated
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertOrder,
		order.OrderID, order.NGOID, order.UserID, order.Amount, order.Currency, string(order.Status))
	if err := row.Scan(&order.CreatedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *OrderRepositoryPG) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	row := r.sql.QueryRow(ctx, sqlinline.QSelectOrder, orderID)
	if err := row.Scan(&o.OrderID, &o.NGOID, &o.UserID, &o.Amount, &o.Currency, &status, &o.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (r *OrderRepositoryPG) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateOrderStatus, orderID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.OrderRepository = (*OrderRepositoryPG)(nil)
