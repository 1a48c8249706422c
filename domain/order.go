package domain

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states of an order. Serialized as the
// lowercase value; symbolic names from older documents are accepted on read.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch OrderStatus(strings.ToLower(raw)) {
	case OrderStatusOpen, OrderStatusPaid, OrderStatusCancelled:
		*s = OrderStatus(strings.ToLower(raw))
		return nil
	default:
		return NewError(ErrCodeSerialization, "unknown order status "+raw)
	}
}

// Terminal reports whether the order can no longer be mutated.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// OrderState is the pure persisted record of an order. It carries data only:
// no behavior and no pending events.
type OrderState struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Lines      []OrderLine `json:"lines"`
	Cancelled  string      `json:"cancel_reason,omitempty"`
	StateMeta
}

// Total sums the line subtotals with exact precision.
func (s OrderState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Order wraps exactly one OrderState and a transient event queue. All
// mutations go through its methods; each validates invariants first, then
// mutates state, then records the matching event.
type Order struct {
	EventRecorder
	state OrderState
}

// NewOrder opens an order for a customer. The aggregate starts at state
// version 0 and queues an order-placed event.
func NewOrder(customerID string) (*Order, error) {
	if customerID == "" {
		return nil, NewValidationError("order requires a customer")
	}
	o := &Order{
		state: OrderState{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			Status:     OrderStatusOpen,
		},
	}
	o.RecordEvent(NewDomainEvent(EventOrderPlaced, o.state.ID, OrderPlacedPayload{
		CustomerID: customerID,
	}))
	return o, nil
}

// RehydrateOrder rebuilds the aggregate wrapper around a stored state
// snapshot. The event queue starts empty: events describe new mutations,
// never history.
func RehydrateOrder(state OrderState) *Order {
	return &Order{state: state}
}

// AggregateID returns the order identity.
func (o *Order) AggregateID() string {
	return o.state.ID
}

// State returns a snapshot copy of the owned state.
func (o *Order) State() OrderState {
	st := o.state
	if len(o.state.Lines) > 0 {
		st.Lines = make([]OrderLine, len(o.state.Lines))
		copy(st.Lines, o.state.Lines)
	}
	return st
}

func (o *Order) StateMeta() StateMeta {
	return o.state.StateMeta
}

func (o *Order) CommitMeta(meta StateMeta) {
	o.state.StateMeta = meta
}

// AddLine appends a priced line to an open order.
func (o *Order) AddLine(line OrderLine) error {
	if o.state.Status != OrderStatusOpen {
		return NewValidationError("cannot add a line to a " + string(o.state.Status) + " order")
	}
	for _, existing := range o.state.Lines {
		if existing.SKU() == line.SKU() && existing.Size() == line.Size() {
			return NewValidationError("order already contains sku " + line.SKU())
		}
	}
	o.state.Lines = append(o.state.Lines, line)
	o.RecordEvent(NewDomainEvent(EventOrderLineAdded, o.state.ID, OrderLineAddedPayload{
		SKU:      line.SKU(),
		Quantity: line.Quantity(),
	}))
	return nil
}

// MarkPaid settles an open, non-empty order.
func (o *Order) MarkPaid() error {
	if o.state.Status != OrderStatusOpen {
		return NewValidationError("cannot pay a " + string(o.state.Status) + " order")
	}
	if len(o.state.Lines) == 0 {
		return NewValidationError("cannot pay an empty order")
	}
	o.state.Status = OrderStatusPaid
	o.RecordEvent(NewDomainEvent(EventOrderPaid, o.state.ID, OrderPaidPayload{
		Total: o.state.Total().String(),
	}))
	return nil
}

// Cancel voids an order that has not been paid.
func (o *Order) Cancel(reason string) error {
	if o.state.Status.Terminal() {
		return NewValidationError("cannot cancel a " + string(o.state.Status) + " order")
	}
	o.state.Status = OrderStatusCancelled
	o.state.Cancelled = reason
	o.RecordEvent(NewDomainEvent(EventOrderCancelled, o.state.ID, OrderCancelledPayload{
		Reason: reason,
	}))
	return nil
}
