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
	customerUC "github.com/fastygo/ordercore/usecase/customer"
)

type CustomerHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
}

func NewCustomerHandler(dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
	}
}

// @Summary Register a customer
// @Tags customers
// @Router /api/v1/customers [post]
func (h *CustomerHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterCustomerRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, customerUC.CmdRegisterCustomer, customerUC.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, state)
}

// @Summary Rename the authenticated customer
// @Tags customers
// @Router /api/v1/customers/me [put]
func (h *CustomerHandler) Rename(ctx *fasthttp.RequestCtx) {
	customerID := string(ctx.Request.Header.Peek("X-Customer-ID"))
	if customerID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing customer id", nil))
		return
	}

	var req transport.RenameCustomerRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeValidation), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteCommand(stdCtx, customerUC.CmdRenameCustomer, customerUC.RenameInput{
		CustomerID: customerID,
		Name:       req.Name,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}

// @Summary Fetch the authenticated customer
// @Tags customers
// @Router /api/v1/customers/me [get]
func (h *CustomerHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	customerID := string(ctx.Request.Header.Peek("X-Customer-ID"))
	if customerID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing customer id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.dispatcher.ExecuteQuery(stdCtx, customerUC.QueryGetCustomer, customerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state)
}
