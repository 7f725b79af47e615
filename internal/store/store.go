package store

import (
	"context"
	"errors"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
)

// Store is the persistence boundary for users, products and orders.
// Handlers depend on this interface so tests can swap in the in-memory
// implementation.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)

	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)

	// MarkOrderPaid transitions the order to paid for the given webhook
	// event id. The event id is recorded insert-once: when it has been
	// seen before the call is a no-op and applied is false.
	MarkOrderPaid(ctx context.Context, orderID, eventID string) (applied bool, err error)
}
