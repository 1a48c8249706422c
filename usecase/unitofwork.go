package usecase

import (
	"context"

	"github.com/fastygo/ordercore/domain"
)

// UnitOfWork tracks the aggregates touched during one logical operation so
// their pending events can be collected after the state change commits.
// Registration is explicit: handlers decide which aggregates' events matter,
// which keeps read-only operations from leaking events. An instance belongs
// to exactly one command execution and must never be shared or reused.
type UnitOfWork struct {
	aggregates []domain.Aggregate
}

// NewUnitOfWork creates an empty unit of work.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// Register tracks an aggregate. Registering the same aggregate twice is a
// no-op.
func (u *UnitOfWork) Register(aggregate domain.Aggregate) {
	if aggregate == nil {
		return
	}
	for _, existing := range u.aggregates {
		if existing == aggregate {
			return
		}
	}
	u.aggregates = append(u.aggregates, aggregate)
}

// PendingEvents flattens the queued events of every registered aggregate.
// Per-aggregate order is preserved; aggregates contribute in registration
// order. No stronger cross-aggregate guarantee is made.
func (u *UnitOfWork) PendingEvents() []domain.DomainEvent {
	var events []domain.DomainEvent
	for _, aggregate := range u.aggregates {
		events = append(events, aggregate.PendingEvents()...)
	}
	return events
}

// Size returns the number of registered aggregates.
func (u *UnitOfWork) Size() int {
	return len(u.aggregates)
}

// Clear drops all registrations, releasing the references to the aggregates
// and their event queues.
func (u *UnitOfWork) Clear() {
	u.aggregates = nil
}

type uowCtxKey struct{}

// ContextWithUnitOfWork scopes a unit of work to a command execution.
func ContextWithUnitOfWork(ctx context.Context, uow *UnitOfWork) context.Context {
	return context.WithValue(ctx, uowCtxKey{}, uow)
}

// UnitOfWorkFrom returns the execution-scoped unit of work, or nil when the
// operation runs outside the command pipeline (e.g. queries).
func UnitOfWorkFrom(ctx context.Context) *UnitOfWork {
	uow, _ := ctx.Value(uowCtxKey{}).(*UnitOfWork)
	return uow
}
