package models

import (
	"errors"
	"time"
)

// Order status values. An order starts pending and is moved to paid by
// the Stripe webhook, never by a client call.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

var (
	ErrEmptyProductName = errors.New("product name cannot be empty")
	ErrNonPositivePrice = errors.New("product price must be positive")
)

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product is a purchasable item. Publicly readable, created by
// authenticated users only.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Order records a single purchase of one product by one user. Amount is
// copied from the product price when the order is created and never
// recomputed, so later price changes do not affect existing orders.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProduct validates the invariants before anything touches the store.
func NewProduct(name string, price float64) (Product, error) {
	if name == "" {
		return Product{}, ErrEmptyProductName
	}
	if price <= 0 {
		return Product{}, ErrNonPositivePrice
	}
	return Product{Name: name, Price: price}, nil
}

// NewOrder snapshots the product price into the order amount.
func NewOrder(userID string, product Product) Order {
	return Order{
		UserID:    userID,
		ProductID: product.ID,
		Amount:    product.Price,
		Status:    OrderStatusPending,
	}
}
