package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all routes. The frontend origin is the only one
// allowed by CORS since the hosted checkout redirects back to it.
func NewRouter(h *Handler, frontendURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware("shop-api"))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)

	// Public endpoints
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Get("/api/products", h.GetProducts)

	// Stripe calls this with its own signature scheme, not a bearer token.
	r.Post("/api/webhooks/stripe", h.StripeWebhook)

	// Protected endpoints (require JWT)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/api/auth/me", h.Me)
		r.Post("/api/products", h.CreateProduct)
		r.Post("/api/orders", h.CreateOrder)
		r.Get("/api/orders", h.GetMyOrders)
		r.Post("/api/orders/checkout-session", h.CreateCheckoutSession)
	})

	return r
}
