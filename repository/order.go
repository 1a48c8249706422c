package repository

import (
	"context"

	"github.com/fastygo/ordercore/domain"
)

// OrderRepository persists order state snapshots. Update enforces optimistic
// concurrency: it fails with domain.ErrConcurrencyConflict when the stored
// state version no longer matches the version the aggregate was loaded at.
// Lookups are server-side filtered queries, never load-all-and-filter.
type OrderRepository interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Add(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Remove(ctx context.Context, id string) error
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
}
