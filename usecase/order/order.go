package order

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/repository"
	"github.com/fastygo/ordercore/usecase"
)

// Command and query names resolved by the dispatcher.
const (
	CmdPlaceOrder  = "order.place"
	CmdAddLine     = "order.add-line"
	CmdPayOrder    = "order.pay"
	CmdCancelOrder = "order.cancel"

	QueryGetOrder   = "order.get"
	QueryListOrders = "order.list"
)

type LineInput struct {
	SKU       string           `json:"sku"`
	Name      string           `json:"name"`
	Size      domain.SizeClass `json:"size"`
	Quantity  int              `json:"quantity"`
	UnitPrice string           `json:"unit_price"`
}

type PlaceOrderInput struct {
	CustomerID string      `json:"customer_id"`
	Lines      []LineInput `json:"lines"`
}

type AddLineInput struct {
	OrderID string    `json:"order_id"`
	Line    LineInput `json:"line"`
}

type PayOrderInput struct {
	OrderID string `json:"order_id"`
}

type CancelOrderInput struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type ListOrdersInput struct {
	CustomerID string             `json:"customer_id"`
	Status     domain.OrderStatus `json:"status"`
}

type UseCase struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func New(orders repository.OrderRepository, customers repository.CustomerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders:    orders,
		customers: customers,
		logger:    logger,
	}
}

// Register wires the use case into the dispatcher.
func (uc *UseCase) Register(d *usecase.Dispatcher) {
	d.RegisterCommand(CmdPlaceOrder, uc.PlaceOrder)
	d.RegisterCommand(CmdAddLine, uc.AddLine)
	d.RegisterCommand(CmdPayOrder, uc.PayOrder)
	d.RegisterCommand(CmdCancelOrder, uc.CancelOrder)
	d.RegisterQuery(QueryGetOrder, uc.GetOrder)
	d.RegisterQuery(QueryListOrders, uc.ListOrders)
}

func (uc *UseCase) PlaceOrder(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(PlaceOrderInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := uc.customers.Get(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(input.CustomerID)
	if err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		built, err := buildLine(line)
		if err != nil {
			return nil, err
		}
		if err := order.AddLine(built); err != nil {
			return nil, err
		}
	}

	uc.track(ctx, order)
	if err := uc.orders.Add(ctx, order); err != nil {
		return nil, err
	}
	return order.State(), nil
}

func (uc *UseCase) AddLine(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(AddLineInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	order, err := uc.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	built, err := buildLine(input.Line)
	if err != nil {
		return nil, err
	}
	if err := order.AddLine(built); err != nil {
		return nil, err
	}

	uc.track(ctx, order)
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order.State(), nil
}

func (uc *UseCase) PayOrder(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(PayOrderInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	order, err := uc.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := order.MarkPaid(); err != nil {
		return nil, err
	}

	uc.track(ctx, order)
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order.State(), nil
}

func (uc *UseCase) CancelOrder(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(CancelOrderInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	order, err := uc.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(input.Reason); err != nil {
		return nil, err
	}

	uc.track(ctx, order)
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order.State(), nil
}

func (uc *UseCase) GetOrder(ctx context.Context, params interface{}) (interface{}, error) {
	id, ok := params.(string)
	if !ok || id == "" {
		return nil, domain.ErrInvalidPayload
	}
	order, err := uc.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return order.State(), nil
}

// ListOrders runs one of the server-side filtered lookups. Exactly one
// filter dimension applies per call.
func (uc *UseCase) ListOrders(ctx context.Context, params interface{}) (interface{}, error) {
	input, ok := params.(ListOrdersInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	var (
		orders []*domain.Order
		err    error
	)
	switch {
	case input.CustomerID != "":
		orders, err = uc.orders.ListByCustomer(ctx, input.CustomerID)
	case input.Status != "":
		orders, err = uc.orders.ListByStatus(ctx, input.Status)
	default:
		return nil, domain.NewValidationError("order list requires a customer or a status filter")
	}
	if err != nil {
		return nil, err
	}

	states := make([]domain.OrderState, 0, len(orders))
	for _, order := range orders {
		states = append(states, order.State())
	}
	return states, nil
}

// track registers the aggregate with the execution's unit of work so its
// events are dispatched after the command commits.
func (uc *UseCase) track(ctx context.Context, order *domain.Order) {
	if uow := usecase.UnitOfWorkFrom(ctx); uow != nil {
		uow.Register(order)
	}
}

func buildLine(input LineInput) (domain.OrderLine, error) {
	price, err := decimal.NewFromString(input.UnitPrice)
	if err != nil {
		return domain.OrderLine{}, domain.NewValidationError("invalid unit price " + input.UnitPrice)
	}
	return domain.NewOrderLine(input.SKU, input.Name, input.Size, input.Quantity, price)
}
