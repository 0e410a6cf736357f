package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, auth middlewares.Authenticator, m *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middlewares.Trace)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(middlewares.Metrics(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/variants/{id}", handler.GetVariant)
		r.Get("/shipping/zones", handler.ListZones)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Authenticate(auth))
			r.Get("/auth/me", handler.Me)

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireRole(entity.RoleCustomer))

				r.Get("/cart", handler.GetCart)
				r.Post("/cart/items", handler.AddCartItem)
				r.Put("/cart/items/{variantId}", handler.UpdateCartItem)
				r.Delete("/cart/items/{variantId}", handler.RemoveCartItem)
				r.Delete("/cart/clear", handler.ClearCart)

				r.Get("/addresses", handler.ListAddresses)
				r.Post("/addresses", handler.CreateAddress)
				r.Get("/addresses/{id}", handler.GetAddress)
				r.Delete("/addresses/{id}", handler.DeleteAddress)

				r.Post("/coupons/apply", handler.ApplyCoupon)
				r.Get("/shipping/quote", handler.ShippingQuote)

				r.Post("/checkout", handler.PlaceOrder)
				r.Get("/orders/me", handler.MyOrders)
				r.Get("/orders/{id}", handler.MyOrder)
			})

			r.Route("/employee", func(r chi.Router) {
				r.Use(middlewares.RequireRole(entity.RoleEmployee))
				r.Get("/orders", handler.EmployeeOrders)
				r.Get("/orders/{id}", handler.EmployeeOrder)
				r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewares.RequireRole(entity.RoleAdmin))
				r.Get("/orders", handler.AdminOrders)
				r.Get("/orders/{id}", handler.AdminOrder)
				r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
				r.Put("/orders/{id}/employee", handler.AssignEmployee)
				r.Get("/checkout-logs", handler.ListCheckoutLogs)

				r.Get("/employees", handler.ListEmployees)
				r.Post("/users/employees", handler.CreateEmployee)
				r.Patch("/users/{id}/disable", handler.DisableUser)
				r.Patch("/users/{id}/enable", handler.EnableUser)
				r.Patch("/users/{id}/role", handler.ChangeUserRole)

				r.Post("/products", handler.CreateProduct)
				r.Post("/products/{id}/variants", handler.CreateVariant)
				r.Put("/variants/{id}/lifecycle", handler.SetVariantLifecycle)
				r.Post("/variants/{id}/restock", handler.RestockVariant)

				r.Get("/coupons", handler.ListCoupons)
				r.Post("/coupons", handler.CreateCoupon)
				r.Get("/coupons/{id}", handler.GetCoupon)
				r.Put("/coupons/{id}", handler.UpdateCoupon)
				r.Delete("/coupons/{id}", handler.DeleteCoupon)

				r.Post("/shipping/zones", handler.CreateZone)
				r.Put("/shipping/zones/{id}", handler.UpdateZone)
				r.Delete("/shipping/zones/{id}", handler.DeleteZone)
			})
		})
	})
	return r
}
