package domain

// EventKind identifies the type of a domain event.
type EventKind string

const (
	EventOrderPlaced        EventKind = "order-placed"
	EventOrderLineAdded     EventKind = "order-line-added"
	EventOrderPaid          EventKind = "order-paid"
	EventOrderCancelled     EventKind = "order-cancelled"
	EventCustomerRegistered EventKind = "customer-registered"
	EventCustomerRenamed    EventKind = "customer-renamed"
)

// DomainEvent is an immutable notification describing a committed state
// change. Events carry data only — never a reference back to the aggregate —
// and are never persisted alongside the business record.
type DomainEvent struct {
	Kind        EventKind
	AggregateID string
	OccurredAt  Time
	Payload     any
}

// NewDomainEvent stamps an event with the current instant.
func NewDomainEvent(kind EventKind, aggregateID string, payload any) DomainEvent {
	return DomainEvent{
		Kind:        kind,
		AggregateID: aggregateID,
		OccurredAt:  Now(),
		Payload:     payload,
	}
}

// Event payloads, one per kind.

type OrderPlacedPayload struct {
	CustomerID string
}

type OrderLineAddedPayload struct {
	SKU      string
	Quantity int
}

type OrderPaidPayload struct {
	Total string
}

type OrderCancelledPayload struct {
	Reason string
}

type CustomerRegisteredPayload struct {
	Name  string
	Email string
}

type CustomerRenamedPayload struct {
	Name string
}
