package order

import (
	"context"
	"testing"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/internal/infrastructure/docstore"
	"github.com/fastygo/ordercore/repository"
	"github.com/fastygo/ordercore/repository/document"
	"github.com/fastygo/ordercore/usecase"
	customerUC "github.com/fastygo/ordercore/usecase/customer"
)

type pipeline struct {
	dispatcher *usecase.Dispatcher
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	delivered  *[]domain.DomainEvent
}

// newPipeline assembles the full command path: memory-backed repositories,
// the dispatch middleware and a recording subscriber for every order event.
func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	driver := docstore.NewMemory()
	orders := document.NewOrderRepository(driver)
	customers := document.NewCustomerRepository(driver)

	delivered := &[]domain.DomainEvent{}
	registry := usecase.NewEventRegistry()
	record := func(ctx context.Context, ev domain.DomainEvent) error {
		*delivered = append(*delivered, ev)
		return nil
	}
	for _, kind := range []domain.EventKind{
		domain.EventOrderPlaced,
		domain.EventOrderLineAdded,
		domain.EventOrderPaid,
		domain.EventOrderCancelled,
	} {
		registry.Subscribe(kind, record)
	}

	dispatcher := usecase.NewDispatcher(usecase.EventDispatch(registry, usecase.DispatchPolicy{}, nil))
	New(orders, customers, nil).Register(dispatcher)
	customerUC.New(customers, nil).Register(dispatcher)

	return &pipeline{
		dispatcher: dispatcher,
		orders:     orders,
		customers:  customers,
		delivered:  delivered,
	}
}

func (p *pipeline) registerCustomer(t *testing.T) domain.CustomerState {
	t.Helper()
	result, err := p.dispatcher.ExecuteCommand(context.Background(), customerUC.CmdRegisterCustomer, customerUC.RegisterInput{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	return result.(domain.CustomerState)
}

func (p *pipeline) placeOrder(t *testing.T, customerID string, lines ...LineInput) domain.OrderState {
	t.Helper()
	result, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPlaceOrder, PlaceOrderInput{
		CustomerID: customerID,
		Lines:      lines,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return result.(domain.OrderState)
}

func line(sku string) LineInput {
	return LineInput{SKU: sku, Name: "item " + sku, Size: domain.SizeLarge, Quantity: 1, UnitPrice: "12.99"}
}

func TestPlaceOrderPersistsAndDispatches(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)

	state := p.placeOrder(t, customer.ID, line("sku-1"))
	if state.StateVersion != 0 {
		t.Fatalf("version after place = %d, want 0", state.StateVersion)
	}
	if state.Status != domain.OrderStatusOpen {
		t.Fatalf("status = %q", state.Status)
	}

	// Placed + one line added.
	if got := len(*p.delivered); got != 2 {
		t.Fatalf("delivered events = %d, want 2", got)
	}
	if (*p.delivered)[0].Kind != domain.EventOrderPlaced {
		t.Fatalf("first event = %q", (*p.delivered)[0].Kind)
	}

	loaded, err := p.orders.Get(context.Background(), state.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.State().CustomerID != customer.ID {
		t.Fatalf("stored customer = %q", loaded.State().CustomerID)
	}
}

func TestPlaceOrderRequiresExistingCustomer(t *testing.T) {
	p := newPipeline(t)
	_, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPlaceOrder, PlaceOrderInput{CustomerID: "ghost"})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if got := len(*p.delivered); got != 0 {
		t.Fatalf("delivered events = %d, want 0", got)
	}
}

func TestMutationsAdvanceVersionOncePerCommand(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)
	placed := p.placeOrder(t, customer.ID, line("sku-1"))

	result, err := p.dispatcher.ExecuteCommand(context.Background(), CmdAddLine, AddLineInput{
		OrderID: placed.ID,
		Line:    line("sku-2"),
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if got := result.(domain.OrderState).StateVersion; got != 1 {
		t.Fatalf("version after add-line = %d, want 1", got)
	}

	result, err = p.dispatcher.ExecuteCommand(context.Background(), CmdPayOrder, PayOrderInput{OrderID: placed.ID})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	paid := result.(domain.OrderState)
	if paid.StateVersion != 2 {
		t.Fatalf("version after pay = %d, want 2", paid.StateVersion)
	}
	if paid.Status != domain.OrderStatusPaid {
		t.Fatalf("status = %q", paid.Status)
	}

	// placed(2 events) + add-line(1) + pay(1)
	if got := len(*p.delivered); got != 4 {
		t.Fatalf("delivered events = %d, want 4", got)
	}
	last := (*p.delivered)[3]
	if last.Kind != domain.EventOrderPaid || last.AggregateID != placed.ID {
		t.Fatalf("last event = %+v", last)
	}
}

func TestFailedCommandDispatchesNothing(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)
	placed := p.placeOrder(t, customer.ID, line("sku-1"))
	before := len(*p.delivered)

	// Paying twice violates the open-order invariant.
	if _, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPayOrder, PayOrderInput{OrderID: placed.ID}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	_, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPayOrder, PayOrderInput{OrderID: placed.ID})
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("second pay = %v, want validation error", err)
	}

	// Only the first pay delivered an event.
	if got := len(*p.delivered); got != before+1 {
		t.Fatalf("delivered events = %d, want %d", got, before+1)
	}
}

func TestCancelOrder(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)
	placed := p.placeOrder(t, customer.ID)

	result, err := p.dispatcher.ExecuteCommand(context.Background(), CmdCancelOrder, CancelOrderInput{
		OrderID: placed.ID,
		Reason:  "out of stock",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	state := result.(domain.OrderState)
	if state.Status != domain.OrderStatusCancelled || state.Cancelled != "out of stock" {
		t.Fatalf("state = %+v", state)
	}
}

func TestListOrdersFilters(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)
	p.placeOrder(t, customer.ID, line("sku-1"))
	p.placeOrder(t, customer.ID, line("sku-2"))

	result, err := p.dispatcher.ExecuteQuery(context.Background(), QueryListOrders, ListOrdersInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if got := len(result.([]domain.OrderState)); got != 2 {
		t.Fatalf("orders by customer = %d, want 2", got)
	}

	result, err = p.dispatcher.ExecuteQuery(context.Background(), QueryListOrders, ListOrdersInput{Status: domain.OrderStatusOpen})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if got := len(result.([]domain.OrderState)); got != 2 {
		t.Fatalf("open orders = %d, want 2", got)
	}

	if _, err := p.dispatcher.ExecuteQuery(context.Background(), QueryListOrders, ListOrdersInput{}); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("unfiltered list = %v, want validation error", err)
	}
}

func TestPlaceOrderRejectsBadPrice(t *testing.T) {
	p := newPipeline(t)
	customer := p.registerCustomer(t)

	bad := line("sku-1")
	bad.UnitPrice = "twelve"
	_, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPlaceOrder, PlaceOrderInput{
		CustomerID: customer.ID,
		Lines:      []LineInput{bad},
	})
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCommandRejectsWrongPayloadType(t *testing.T) {
	p := newPipeline(t)
	_, err := p.dispatcher.ExecuteCommand(context.Background(), CmdPlaceOrder, "not an input struct")
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("err = %v, want invalid payload", err)
	}
}
