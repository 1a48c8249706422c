package repository

import (
	"context"

	"github.com/fastygo/ordercore/domain"
)

// CustomerRepository persists customer state snapshots with the same
// optimistic-concurrency contract as OrderRepository.
type CustomerRepository interface {
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Add(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Remove(ctx context.Context, id string) error
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
}
