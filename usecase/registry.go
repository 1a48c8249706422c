package usecase

import (
	"context"

	"github.com/fastygo/ordercore/domain"
)

// EventHandler reacts to a dispatched domain event. Handlers run best-effort
// after the state change committed; returning an error never affects the
// command outcome.
type EventHandler func(ctx context.Context, event domain.DomainEvent) error

// EventRegistry maps event kinds to their ordered subscriber lists. It is
// built once at composition time and handed to the dispatch middleware by
// reference — never consulted as ambient global state.
type EventRegistry struct {
	handlers map[domain.EventKind][]EventHandler
}

// NewEventRegistry creates an empty registry.
func NewEventRegistry() *EventRegistry {
	return &EventRegistry{handlers: make(map[domain.EventKind][]EventHandler)}
}

// Subscribe appends a handler to the kind's subscriber list. Dispatch order
// follows subscription order.
func (r *EventRegistry) Subscribe(kind domain.EventKind, handler EventHandler) {
	if handler == nil {
		return
	}
	r.handlers[kind] = append(r.handlers[kind], handler)
}

// HandlersFor returns a snapshot of the subscribers for a kind.
func (r *EventRegistry) HandlersFor(kind domain.EventKind) []EventHandler {
	subscribed := r.handlers[kind]
	if len(subscribed) == 0 {
		return nil
	}
	out := make([]EventHandler, len(subscribed))
	copy(out, subscribed)
	return out
}
