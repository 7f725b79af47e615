package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
)

// Memory is an in-memory Store used in tests and local experiments.
// It mirrors the Postgres semantics, including the insert-once event
// ledger behind MarkOrderPaid.
type Memory struct {
	mu              sync.RWMutex
	users           map[string]models.User
	products        map[string]models.Product
	orders          map[string]models.Order
	processedEvents map[string]string // event id -> order id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:           make(map[string]models.User),
		products:        make(map[string]models.Product),
		orders:          make(map[string]models.Order),
		processedEvents: make(map[string]string),
	}
}

func (s *Memory) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrConflict
		}
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *Memory) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = uuid.NewString()
	product.CreatedAt = time.Now().UTC()
	s.products[product.ID] = product
	return &product, nil
}

func (s *Memory) GetProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (s *Memory) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Memory) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = uuid.NewString()
	order.CreatedAt = time.Now().UTC()
	s.orders[order.ID] = order
	return &order, nil
}

func (s *Memory) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *Memory) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Memory) MarkOrderPaid(ctx context.Context, orderID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.processedEvents[eventID]; seen {
		return false, nil
	}

	o, ok := s.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}

	s.processedEvents[eventID] = orderID
	o.Status = models.OrderStatusPaid
	s.orders[orderID] = o
	return true, nil
}
