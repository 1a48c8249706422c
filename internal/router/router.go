package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/ordercore/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Customer *apiHandler.CustomerHandler
	Order    *apiHandler.OrderHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Registration is open; everything below requires a token.
	r.POST("/api/v1/customers", handlers.Customer.Register)

	r.GET("/api/v1/customers/me", authMiddleware(handlers.Customer.GetProfile))
	r.PUT("/api/v1/customers/me", authMiddleware(handlers.Customer.Rename))

	r.GET("/api/v1/orders", authMiddleware(handlers.Order.ListOrders))
	r.POST("/api/v1/orders", authMiddleware(handlers.Order.PlaceOrder))
	r.GET("/api/v1/orders/{id}", authMiddleware(handlers.Order.GetOrder))
	r.DELETE("/api/v1/orders/{id}", authMiddleware(handlers.Order.CancelOrder))
	r.POST("/api/v1/orders/{id}/lines", authMiddleware(handlers.Order.AddLine))
	r.POST("/api/v1/orders/{id}/pay", authMiddleware(handlers.Order.PayOrder))

	return r
}
