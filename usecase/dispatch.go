package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/ordercore/domain"
)

// DispatchPolicy configures how event-handler failures are treated. The
// default (zero RetryAttempts) is log-and-continue; retries stay in-process
// and never turn into dead-lettering.
type DispatchPolicy struct {
	RetryAttempts int
}

// EventDispatch wraps a command handler with the deferred-dispatch state
// machine: invoke the handler, and only when it succeeds collect the pending
// events from the execution's unit of work and deliver them. The unit of
// work is cleared on every exit path.
//
// State commit and event dispatch are deliberately not atomic: durable
// persistence wins, delivery is at-least-once and best-effort.
func EventDispatch(registry *EventRegistry, policy DispatchPolicy, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next CommandHandler) CommandHandler {
		return func(ctx context.Context, payload interface{}) (interface{}, error) {
			uow := NewUnitOfWork()
			ctx = ContextWithUnitOfWork(ctx, uow)
			defer uow.Clear()

			result, err := next(ctx, payload)
			if err != nil {
				// The mutation never durably committed; its events
				// must not be delivered.
				return nil, err
			}

			for _, event := range uow.PendingEvents() {
				for _, handler := range registry.HandlersFor(event.Kind) {
					deliver(ctx, handler, event, policy, logger)
				}
			}
			return result, nil
		}
	}
}

// deliver runs one handler for one event, awaiting completion. Failures are
// caught and logged; they block neither the remaining handlers nor the
// remaining events.
func deliver(ctx context.Context, handler EventHandler, event domain.DomainEvent, policy DispatchPolicy, logger *zap.Logger) {
	attempts := policy.RetryAttempts + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = invoke(ctx, handler, event); err == nil {
			return
		}
		if attempt < attempts {
			logger.Warn("event handler failed, retrying",
				zap.String("event", string(event.Kind)),
				zap.String("aggregate_id", event.AggregateID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}
	logger.Error("event handler failed",
		zap.String("event", string(event.Kind)),
		zap.String("aggregate_id", event.AggregateID),
		zap.Error(err))
}

// invoke shields the dispatch loop from panicking handlers.
func invoke(ctx context.Context, handler EventHandler, event domain.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
