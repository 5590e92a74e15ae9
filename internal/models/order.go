// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a frozen snapshot of what was sold: the name and price are
// copied from the catalog at order time and never follow later catalog edits.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderItems is stored as a single JSON document; order history must survive
// product deletion, so items do not reference the products table.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return nil, nil
	}
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*items = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("unsupported type %T for order items", value)
		}
	}

	return json.Unmarshal(bytes, items)
}

type Order struct {
	BaseModel
	OwnerID       uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty" gorm:"type:uuid;index"`
	CustomerPhone string          `json:"customer_phone" gorm:"size:32;index"`
	CustomerName  string          `json:"customer_name" gorm:"size:255"`
	Items         OrderItems      `json:"items" gorm:"type:jsonb;not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Timestamp     time.Time       `json:"timestamp" gorm:"not null;index"`
	Notes         string          `json:"notes" gorm:"type:text"`

	// Relationships
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

// ComputeTotal derives the order total from its items.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// NextStatus returns the immediate successor in the order lifecycle, or ""
// for the terminal state.
func (s OrderStatus) NextStatus() OrderStatus {
	switch s {
	case OrderStatusPending:
		return OrderStatusConfirmed
	case OrderStatusConfirmed:
		return OrderStatusDispatched
	case OrderStatusDispatched:
		return OrderStatusDelivered
	default:
		return ""
	}
}

// Valid reports whether the value is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched, OrderStatusDelivered:
		return true
	}
	return false
}
