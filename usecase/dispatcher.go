package usecase

import (
	"context"
	"fmt"
	"sync"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Middleware wraps a command handler with cross-cutting behavior.
type Middleware func(CommandHandler) CommandHandler

// Chain composes middleware around a handler, first middleware outermost.
// The chain is assembled once; nothing is re-resolved per call.
func Chain(handler CommandHandler, middleware ...Middleware) CommandHandler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

// Dispatcher routes named commands and queries to their handlers. Commands
// are wrapped in the middleware chain at registration time; queries bypass
// it — a pure lookup must never participate in event dispatch.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	middleware  []Middleware
	mu          sync.RWMutex
}

// NewDispatcher builds a dispatcher with a fixed middleware chain.
func NewDispatcher(middleware ...Middleware) *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
		middleware:  middleware,
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = Chain(handler, d.middleware...)
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command handler %s not registered", name)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("query handler %s not registered", name)
	}
	return handler(ctx, params)
}
