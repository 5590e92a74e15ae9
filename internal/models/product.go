// internal/models/product.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	OwnerID       uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	NameKey       string          `json:"-" gorm:"size:255;not null;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity      int             `json:"quantity" gorm:"not null;default:0"`
	MinStock      int             `json:"min_stock" gorm:"not null;default:5"`
	Category      string          `json:"category" gorm:"size:100;default:'General';index"`
	SupplierEmail string          `json:"supplier_email,omitempty" gorm:"size:255"`
}

// NormalizeProductName collapses case and surrounding/internal whitespace so
// "  Whole   Milk " and "whole milk" resolve to the same catalog entry.
func NormalizeProductName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Tier classifies the product's current stock level.
func (p *Product) Tier() StockTier {
	return ClassifyStock(p.Quantity, p.MinStock)
}
