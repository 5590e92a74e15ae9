// internal/models/stock_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minStock int
		want     StockTier
	}{
		{"zero quantity is out of stock", 0, 5, StockTierOutOfStock},
		{"zero quantity with zero min stock", 0, 0, StockTierOutOfStock},
		{"below 20 percent of min stock is danger", 3, 20, StockTierDanger},
		{"exactly 20 percent of min stock is low, not danger", 4, 20, StockTierLow},
		{"at min stock is low", 20, 20, StockTierLow},
		{"just above min stock is in stock", 21, 20, StockTierInStock},
		{"one unit with default min stock is danger", 1, 10, StockTierDanger},
		{"healthy stock", 100, 5, StockTierInStock},
		// Zero min stock collapses the danger and low bands entirely.
		{"zero min stock never reports danger", 1, 0, StockTierInStock},
		{"zero min stock never reports low", 50, 0, StockTierInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStock(tt.quantity, tt.minStock))
		})
	}
}

func TestNormalizeProductName(t *testing.T) {
	assert.Equal(t, "whole milk", NormalizeProductName("  Whole   Milk "))
	assert.Equal(t, "whole milk", NormalizeProductName("whole milk"))
	assert.Equal(t, "rice", NormalizeProductName("RICE"))
	assert.Equal(t, "", NormalizeProductName("   "))
}

func TestOrderStatusNextStatus(t *testing.T) {
	assert.Equal(t, OrderStatusConfirmed, OrderStatusPending.NextStatus())
	assert.Equal(t, OrderStatusDispatched, OrderStatusConfirmed.NextStatus())
	assert.Equal(t, OrderStatusDelivered, OrderStatusDispatched.NextStatus())
	assert.Equal(t, OrderStatus(""), OrderStatusDelivered.NextStatus())
}
