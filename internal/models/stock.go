// internal/models/stock.go
package models

// StockTier is the classification bucket for a product's stock level.
type StockTier string

const (
	StockTierOutOfStock StockTier = "out_of_stock"
	StockTierDanger     StockTier = "danger"
	StockTierLow        StockTier = "low"
	StockTierInStock    StockTier = "in_stock"
)

// ClassifyStock maps a quantity/minStock pair to a stock tier. First match
// wins: empty stock, then the critical band below 20% of the reorder point,
// then at-or-below the reorder point, then healthy. A zero minStock makes the
// danger threshold zero, so such products are only ever out_of_stock or
// in_stock.
func ClassifyStock(quantity, minStock int) StockTier {
	switch {
	case quantity == 0:
		return StockTierOutOfStock
	case float64(quantity) < float64(minStock)*0.2:
		return StockTierDanger
	case quantity <= minStock:
		return StockTierLow
	default:
		return StockTierInStock
	}
}
