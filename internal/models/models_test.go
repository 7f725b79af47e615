package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		price       float64
		wantErr     error
	}{
		{name: "Valid", productName: "Widget", price: 9.99, wantErr: nil},
		{name: "EmptyName", productName: "", price: 9.99, wantErr: ErrEmptyProductName},
		{name: "ZeroPrice", productName: "Widget", price: 0, wantErr: ErrNonPositivePrice},
		{name: "NegativePrice", productName: "Widget", price: -1.50, wantErr: ErrNonPositivePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.productName, tt.price)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.productName, p.Name)
			assert.Equal(t, tt.price, p.Price)
		})
	}
}

func TestNewOrder_SnapshotsPrice(t *testing.T) {
	product := Product{ID: "p1", Name: "Widget", Price: 9.99}

	order := NewOrder("u1", product)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "p1", order.ProductID)
	assert.Equal(t, 9.99, order.Amount)
	assert.Equal(t, OrderStatusPending, order.Status)

	// A later price change must not leak into the order.
	product.Price = 19.99
	assert.Equal(t, 9.99, order.Amount)
}
