package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/auth"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/payments"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/store"
)

// Webhook payloads larger than this are rejected outright.
const maxWebhookBodyBytes = 65536

// PaymentGateway is the hosted-checkout boundary. The Stripe adapter
// implements it; tests substitute a fake.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, order models.Order, product models.Product) (*payments.CheckoutSession, error)
	VerifyEvent(payload []byte, sigHeader string) (*payments.Event, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Store    store.Store
	Auth     *auth.Service
	Payments PaymentGateway
	Log      zerolog.Logger
}

// NewHandler creates a new handler
func NewHandler(st store.Store, authService *auth.Service, gateway PaymentGateway, log zerolog.Logger) *Handler {
	return &Handler{Store: st, Auth: authService, Payments: gateway, Log: log}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Root reports that the API is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error": "Username and password required"}`, http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			http.Error(w, `{"error": "Username already taken"}`, http.StatusConflict)
			return
		}
		if errors.Is(err, auth.ErrInvalidInput) {
			http.Error(w, `{"error": "Invalid username or password"}`, http.StatusBadRequest)
			return
		}
		h.Log.Error().Err(err).Msg("registration failed")
		http.Error(w, `{"error": "Failed to register user"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login handles user login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.Log.Error().Err(err).Msg("login failed")
		}
		http.Error(w, `{"error": "Invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me returns the identity resolved by the auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
	})
}

// CreateProduct handles product creation
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	product, err := models.NewProduct(req.Name, req.Price)
	if err != nil {
		http.Error(w, `{"error": "Name and positive price required"}`, http.StatusBadRequest)
		return
	}

	created, err := h.Store.CreateProduct(r.Context(), product)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to create product")
		http.Error(w, `{"error": "Failed to create product"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetProducts lists all products. Unpaginated by design.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.GetProducts(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list products")
		http.Error(w, `{"error": "Failed to retrieve products"}`, http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

// CreateOrder creates an order for the authenticated user, snapshotting
// the current product price as the order amount.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		http.Error(w, `{"error": "Product ID required"}`, http.StatusBadRequest)
		return
	}

	product, err := h.Store.GetProductByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error": "Product not found"}`, http.StatusNotFound)
			return
		}
		h.Log.Error().Err(err).Msg("failed to load product")
		http.Error(w, `{"error": "Failed to create order"}`, http.StatusInternalServerError)
		return
	}

	created, err := h.Store.CreateOrder(r.Context(), models.NewOrder(user.ID, *product))
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to create order")
		http.Error(w, `{"error": "Failed to create order"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetMyOrders retrieves the authenticated user's orders
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	orders, err := h.Store.GetUserOrders(r.Context(), user.ID)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list orders")
		http.Error(w, `{"error": "Failed to retrieve orders"}`, http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

// CreateCheckoutSession starts a hosted checkout for one of the
// caller's pending orders. Foreign order ids get the same 404 as
// missing ones so the endpoint does not confirm their existence.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, `{"error": "Order ID required"}`, http.StatusBadRequest)
		return
	}

	order, err := h.Store.GetOrderByID(r.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error": "Order not found"}`, http.StatusNotFound)
			return
		}
		h.Log.Error().Err(err).Msg("failed to load order")
		http.Error(w, `{"error": "Failed to create checkout session"}`, http.StatusInternalServerError)
		return
	}
	if order.UserID != user.ID {
		http.Error(w, `{"error": "Order not found"}`, http.StatusNotFound)
		return
	}

	product, err := h.Store.GetProductByID(r.Context(), order.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error": "Product not found"}`, http.StatusNotFound)
			return
		}
		h.Log.Error().Err(err).Msg("failed to load product")
		http.Error(w, `{"error": "Failed to create checkout session"}`, http.StatusInternalServerError)
		return
	}

	session, err := h.Payments.CreateCheckoutSession(r.Context(), *order, *product)
	if err != nil {
		h.Log.Error().Err(err).Str("order_id", order.ID).Msg("checkout session creation failed")
		http.Error(w, `{"error": "Payment provider unavailable"}`, http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// StripeWebhook ingests payment-lifecycle callbacks. The body must stay
// raw for signature verification. Applying the paid transition goes
// through the insert-once event ledger, so Stripe redelivering the same
// event id is a no-op.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, `{"error": "Failed to read request body"}`, http.StatusBadRequest)
		return
	}

	event, err := h.Payments.VerifyEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Log.Warn().Err(err).Msg("webhook signature verification failed")
		http.Error(w, `{"error": "Invalid webhook signature"}`, http.StatusBadRequest)
		return
	}

	if !event.Completed {
		h.Log.Debug().Str("event_id", event.ID).Str("type", event.Type).Msg("ignoring webhook event")
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if event.OrderID == "" {
		h.Log.Warn().Str("event_id", event.ID).Msg("checkout completed without order_id metadata")
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	applied, err := h.Store.MarkOrderPaid(r.Context(), event.OrderID, event.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Retrying cannot fix an unknown order, so acknowledge.
			h.Log.Warn().Str("event_id", event.ID).Str("order_id", event.OrderID).Msg("webhook for unknown order")
			json.NewEncoder(w).Encode(map[string]bool{"received": true})
			return
		}
		h.Log.Error().Err(err).Str("order_id", event.OrderID).Msg("failed to mark order paid")
		http.Error(w, `{"error": "Failed to process event"}`, http.StatusInternalServerError)
		return
	}
	if !applied {
		h.Log.Info().Str("event_id", event.ID).Msg("duplicate webhook event ignored")
	} else {
		h.Log.Info().Str("event_id", event.ID).Str("order_id", event.OrderID).Msg("order marked paid")
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
