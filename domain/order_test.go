package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustLine(t *testing.T, sku string, size SizeClass, qty int, price string) OrderLine {
	t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price %q: %v", price, err)
	}
	line, err := NewOrderLine(sku, "item "+sku, size, qty, d)
	if err != nil {
		t.Fatalf("NewOrderLine(%q): %v", sku, err)
	}
	return line
}

func TestNewOrderRecordsPlacedEvent(t *testing.T) {
	order, err := NewOrder("cust-1")
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if order.AggregateID() == "" {
		t.Fatal("expected a generated order id")
	}
	if got := order.State().Status; got != OrderStatusOpen {
		t.Fatalf("status = %q, want %q", got, OrderStatusOpen)
	}

	events := order.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("pending events = %d, want 1", len(events))
	}
	if events[0].Kind != EventOrderPlaced {
		t.Fatalf("event kind = %q, want %q", events[0].Kind, EventOrderPlaced)
	}
	if events[0].AggregateID != order.AggregateID() {
		t.Fatalf("event aggregate id = %q, want %q", events[0].AggregateID, order.AggregateID())
	}
}

func TestNewOrderRequiresCustomer(t *testing.T) {
	if _, err := NewOrder(""); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddLineAccumulatesEvents(t *testing.T) {
	order, _ := NewOrder("cust-1")
	if err := order.AddLine(mustLine(t, "sku-1", SizeLarge, 2, "12.99")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := order.AddLine(mustLine(t, "sku-2", SizeSmall, 1, "3.50")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	events := order.PendingEvents()
	if len(events) != 3 {
		t.Fatalf("pending events = %d, want 3", len(events))
	}
	if events[1].Kind != EventOrderLineAdded || events[2].Kind != EventOrderLineAdded {
		t.Fatalf("unexpected event kinds %q, %q", events[1].Kind, events[2].Kind)
	}

	if got := order.State().Total().String(); got != "29.48" {
		t.Fatalf("total = %s, want 29.48", got)
	}
}

func TestAddLineRejectsDuplicateSKUAndSize(t *testing.T) {
	order, _ := NewOrder("cust-1")
	if err := order.AddLine(mustLine(t, "sku-1", SizeLarge, 1, "5.00")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := order.AddLine(mustLine(t, "sku-1", SizeLarge, 3, "5.00")); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error for duplicate line, got %v", err)
	}
	// Same sku in a different size is a distinct line.
	if err := order.AddLine(mustLine(t, "sku-1", SizeSmall, 1, "3.00")); err != nil {
		t.Fatalf("AddLine different size: %v", err)
	}
}

func TestMarkPaidRequiresOpenNonEmptyOrder(t *testing.T) {
	order, _ := NewOrder("cust-1")
	if err := order.MarkPaid(); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error for empty order, got %v", err)
	}

	if err := order.AddLine(mustLine(t, "sku-1", SizeMedium, 1, "9.99")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := order.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if got := order.State().Status; got != OrderStatusPaid {
		t.Fatalf("status = %q, want %q", got, OrderStatusPaid)
	}

	if err := order.MarkPaid(); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error paying twice, got %v", err)
	}
	if err := order.AddLine(mustLine(t, "sku-2", SizeSmall, 1, "1.00")); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error adding to paid order, got %v", err)
	}
}

func TestCancelBlocksTerminalOrders(t *testing.T) {
	order, _ := NewOrder("cust-1")
	if err := order.Cancel("changed my mind"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	state := order.State()
	if state.Status != OrderStatusCancelled {
		t.Fatalf("status = %q, want %q", state.Status, OrderStatusCancelled)
	}
	if state.Cancelled != "changed my mind" {
		t.Fatalf("cancel reason = %q", state.Cancelled)
	}

	if err := order.Cancel("again"); !IsDomainError(err, ErrCodeValidation) {
		t.Fatalf("expected validation error cancelling twice, got %v", err)
	}
}

func TestFailedMutationRecordsNoEvent(t *testing.T) {
	order, _ := NewOrder("cust-1")
	before := len(order.PendingEvents())

	if err := order.MarkPaid(); err == nil {
		t.Fatal("expected MarkPaid to fail on empty order")
	}
	if after := len(order.PendingEvents()); after != before {
		t.Fatalf("pending events grew from %d to %d on failed mutation", before, after)
	}
}

func TestClearPendingEvents(t *testing.T) {
	order, _ := NewOrder("cust-1")
	order.ClearPendingEvents()
	if got := order.PendingEvents(); got != nil {
		t.Fatalf("pending events after clear = %v, want none", got)
	}

	// The aggregate keeps working after a clear.
	if err := order.AddLine(mustLine(t, "sku-1", SizeLarge, 1, "2.00")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if got := len(order.PendingEvents()); got != 1 {
		t.Fatalf("pending events = %d, want 1", got)
	}
}

func TestRehydrateOrderStartsWithEmptyQueue(t *testing.T) {
	state := OrderState{
		ID:         "ord-1",
		CustomerID: "cust-1",
		Status:     OrderStatusOpen,
		Lines:      []OrderLine{mustLine(t, "sku-1", SizeLarge, 1, "12.99")},
	}
	state.StateVersion = 4

	order := RehydrateOrder(state)
	if got := order.PendingEvents(); got != nil {
		t.Fatalf("rehydrated order has %d pending events, want 0", len(got))
	}
	if got := order.StateMeta().StateVersion; got != 4 {
		t.Fatalf("state version = %d, want 4", got)
	}

	if err := order.AddLine(mustLine(t, "sku-2", SizeSmall, 1, "1.00")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	events := order.PendingEvents()
	if len(events) != 1 || events[0].Kind != EventOrderLineAdded {
		t.Fatalf("unexpected events after rehydrated mutation: %v", events)
	}
}

func TestStateReturnsIndependentCopy(t *testing.T) {
	order, _ := NewOrder("cust-1")
	if err := order.AddLine(mustLine(t, "sku-1", SizeLarge, 1, "2.00")); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	snapshot := order.State()
	snapshot.Lines[0] = mustLine(t, "sku-x", SizeSmall, 9, "0.01")

	if got := order.State().Lines[0].SKU(); got != "sku-1" {
		t.Fatalf("mutating a snapshot leaked into the aggregate: sku = %q", got)
	}
}

func TestIdentityOfResolvesBothAccessorShapes(t *testing.T) {
	order, _ := NewOrder("cust-1")
	id, err := IdentityOf(order)
	if err != nil || id != order.AggregateID() {
		t.Fatalf("IdentityOf(order) = %q, %v", id, err)
	}

	customer, err := NewCustomer("Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("NewCustomer: %v", err)
	}
	id, err = IdentityOf(customer)
	if err != nil || id != customer.GetID() {
		t.Fatalf("IdentityOf(customer) = %q, %v", id, err)
	}

	if _, err := IdentityOf(struct{}{}); !IsDomainError(err, ErrCodeInternal) {
		t.Fatalf("expected internal error for identity-less value, got %v", err)
	}
}
