package usecase

import (
	"context"
	"testing"

	"github.com/fastygo/ordercore/domain"
)

// stubAggregate is a minimal Aggregate for pipeline tests.
type stubAggregate struct {
	domain.EventRecorder
	id string
}

func (s *stubAggregate) record(kind domain.EventKind) {
	s.RecordEvent(domain.NewDomainEvent(kind, s.id, nil))
}

func TestUnitOfWorkRegisterIsIdempotent(t *testing.T) {
	uow := NewUnitOfWork()
	agg := &stubAggregate{id: "a"}

	uow.Register(agg)
	uow.Register(agg)
	uow.Register(nil)

	if got := uow.Size(); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}

func TestUnitOfWorkFlattensInRegistrationOrder(t *testing.T) {
	uow := NewUnitOfWork()
	first := &stubAggregate{id: "first"}
	second := &stubAggregate{id: "second"}

	first.record(domain.EventOrderPlaced)
	first.record(domain.EventOrderLineAdded)
	second.record(domain.EventCustomerRegistered)

	uow.Register(first)
	uow.Register(second)

	events := uow.PendingEvents()
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	wantIDs := []string{"first", "first", "second"}
	for i, event := range events {
		if event.AggregateID != wantIDs[i] {
			t.Fatalf("event[%d] from %q, want %q", i, event.AggregateID, wantIDs[i])
		}
	}
}

func TestUnitOfWorkClear(t *testing.T) {
	uow := NewUnitOfWork()
	agg := &stubAggregate{id: "a"}
	agg.record(domain.EventOrderPlaced)
	uow.Register(agg)

	uow.Clear()
	if uow.Size() != 0 {
		t.Fatalf("size after clear = %d", uow.Size())
	}
	if got := uow.PendingEvents(); got != nil {
		t.Fatalf("events after clear = %v", got)
	}
}

func TestUnitOfWorkContextScoping(t *testing.T) {
	if got := UnitOfWorkFrom(context.Background()); got != nil {
		t.Fatalf("bare context yielded a unit of work: %v", got)
	}

	uow := NewUnitOfWork()
	ctx := ContextWithUnitOfWork(context.Background(), uow)
	if got := UnitOfWorkFrom(ctx); got != uow {
		t.Fatalf("UnitOfWorkFrom = %v, want the scoped instance", got)
	}
}
