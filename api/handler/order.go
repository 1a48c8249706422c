package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ordercore/api/transport"
	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/pkg/httpcontext"
	"github.com/fastygo/ordercore/usecase"
	orderUC "github.com/fastygo/ordercore/usecase/order"
)

type OrderHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
}

func NewOrderHandler(dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
	}
}

// @Summary Place an order
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) PlaceOrder(ctx *fasthttp.RequestCtx) {
	customerID := h.customerID(ctx)
	if customerID == "" {
		return
	}

	var req transport.PlaceOrderRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	input := orderUC.PlaceOrderInput{CustomerID: customerID}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, lineInput(line))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, orderUC.CmdPlaceOrder, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, state)
}

// @Summary Add a line to an order
// @Tags orders
// @Router /api/v1/orders/{id}/lines [post]
func (h *OrderHandler) AddLine(ctx *fasthttp.RequestCtx) {
	if h.customerID(ctx) == "" {
		return
	}
	orderID := h.orderID(ctx)
	if orderID == "" {
		return
	}

	var req transport.AddLineRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, orderUC.CmdAddLine, orderUC.AddLineInput{
		OrderID: orderID,
		Line:    lineInput(req.Line),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}

// @Summary Pay an order
// @Tags orders
// @Router /api/v1/orders/{id}/pay [post]
func (h *OrderHandler) PayOrder(ctx *fasthttp.RequestCtx) {
	if h.customerID(ctx) == "" {
		return
	}
	orderID := h.orderID(ctx)
	if orderID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, orderUC.CmdPayOrder, orderUC.PayOrderInput{OrderID: orderID})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}

// @Summary Cancel an order
// @Tags orders
// @Router /api/v1/orders/{id} [delete]
func (h *OrderHandler) CancelOrder(ctx *fasthttp.RequestCtx) {
	if h.customerID(ctx) == "" {
		return
	}
	orderID := h.orderID(ctx)
	if orderID == "" {
		return
	}

	var req transport.CancelOrderRequest
	_ = json.Unmarshal(ctx.PostBody(), &req)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, orderUC.CmdCancelOrder, orderUC.CancelOrderInput{
		OrderID: orderID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}

// @Summary List the caller's orders
// @Tags orders
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(ctx *fasthttp.RequestCtx) {
	customerID := h.customerID(ctx)
	if customerID == "" {
		return
	}

	input := orderUC.ListOrdersInput{CustomerID: customerID}
	if status := string(ctx.QueryArgs().Peek("status")); status != "" {
		input = orderUC.ListOrdersInput{Status: domain.OrderStatus(status)}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	states, err := h.dispatcher.ExecuteQuery(stdCtx, orderUC.QueryListOrders, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, states)
}

// @Summary Fetch one order
// @Tags orders
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(ctx *fasthttp.RequestCtx) {
	if h.customerID(ctx) == "" {
		return
	}
	orderID := h.orderID(ctx)
	if orderID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteQuery(stdCtx, orderUC.QueryGetOrder, orderID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}

func (h *OrderHandler) orderID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "missing order id", nil))
	}
	return id
}

func (h *OrderHandler) customerID(ctx *fasthttp.RequestCtx) string {
	customerID := string(ctx.Request.Header.Peek("X-Customer-ID"))
	if customerID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing customer id", nil))
	}
	return customerID
}

func lineInput(req transport.LineRequest) orderUC.LineInput {
	return orderUC.LineInput{
		SKU:       req.SKU,
		Name:      req.Name,
		Size:      domain.SizeClass(req.Size),
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}
}
