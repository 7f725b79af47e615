package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
)

func TestMemory_CreateUser_Conflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = s.CreateUser(ctx, "alice", "other-hash")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemory_GetUserByUsername_NotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_OrderAmountSurvivesPriceChange(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	product, err := s.CreateProduct(ctx, models.Product{Name: "Widget", Price: 9.99})
	require.NoError(t, err)

	order, err := s.CreateOrder(ctx, models.NewOrder(user.ID, *product))
	require.NoError(t, err)
	assert.Equal(t, 9.99, order.Amount)

	// Mutate the stored product price directly; existing orders keep
	// the snapshot they were created with.
	s.mu.Lock()
	p := s.products[product.ID]
	p.Price = 99.99
	s.products[product.ID] = p
	s.mu.Unlock()

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.99, got.Amount)
}

func TestMemory_GetUserOrders_Isolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	alice, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	product, err := s.CreateProduct(ctx, models.Product{Name: "Widget", Price: 9.99})
	require.NoError(t, err)

	aliceOrder, err := s.CreateOrder(ctx, models.NewOrder(alice.ID, *product))
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, models.NewOrder(bob.ID, *product))
	require.NoError(t, err)

	orders, err := s.GetUserOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, aliceOrder.ID, orders[0].ID)
	assert.Equal(t, alice.ID, orders[0].UserID)
}

func TestMemory_MarkOrderPaid_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, models.Product{Name: "Widget", Price: 9.99})
	require.NoError(t, err)
	order, err := s.CreateOrder(ctx, models.NewOrder(user.ID, *product))
	require.NoError(t, err)

	applied, err := s.MarkOrderPaid(ctx, order.ID, "evt_1")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	// Redelivery of the same event id must not apply twice.
	applied, err = s.MarkOrderPaid(ctx, order.ID, "evt_1")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestMemory_MarkOrderPaid_UnknownOrder(t *testing.T) {
	s := NewMemory()
	_, err := s.MarkOrderPaid(context.Background(), "missing", "evt_1")
	assert.ErrorIs(t, err, ErrNotFound)
}
