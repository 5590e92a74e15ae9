// internal/services/dashboard_service.go
package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/models"
)

// DashboardService composes catalog and ledger state into summary statistics.
// Read-only: it never mutates anything and is safe to call concurrently.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	// TotalRevenue sums every order regardless of status, pending included.
	// This mirrors what the dashboard has always shown; realized-only revenue
	// is a pending product decision.
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProducts int64           `json:"total_products"`
	LowStockCount int64           `json:"low_stock_count"`
	RecentOrders  []models.Order  `json:"recent_orders"`
	LowProducts   []ProductResult `json:"low_products"`
}

// GetStats builds the owner's dashboard summary.
func (s *DashboardService) GetStats(ownerID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{TotalRevenue: decimal.Zero}

	if err := s.db.Model(&models.Order{}).Where("owner_id = ?", ownerID).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := s.db.Model(&models.Order{}).
		Where("owner_id = ? AND status = ?", ownerID, models.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	// Summing in the application keeps the arithmetic exact on both postgres
	// and the sqlite test database.
	var totals []decimal.Decimal
	if err := s.db.Model(&models.Order{}).Where("owner_id = ?", ownerID).
		Pluck("total", &totals).Error; err != nil {
		return nil, fmt.Errorf("failed to load order totals: %w", err)
	}
	for _, amount := range totals {
		stats.TotalRevenue = stats.TotalRevenue.Add(amount)
	}

	if err := s.db.Model(&models.Product{}).Where("owner_id = ?", ownerID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := s.db.Where("owner_id = ?", ownerID).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	// Tier thresholds depend on each product's own minStock, so the
	// classification happens here rather than in SQL.
	attention := make([]ProductResult, 0)
	for i := range products {
		tier := products[i].Tier()
		if tier == models.StockTierInStock {
			continue
		}
		stats.LowStockCount++
		attention = append(attention, ProductResult{
			Product: &products[i],
			Tier:    tier,
		})
	}

	sort.SliceStable(attention, func(i, j int) bool {
		return tierSeverity(attention[i].Tier) < tierSeverity(attention[j].Tier)
	})
	if len(attention) > 3 {
		attention = attention[:3]
	}
	stats.LowProducts = attention

	var recent []models.Order
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("timestamp DESC").Limit(3).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	stats.RecentOrders = recent

	return stats, nil
}

func tierSeverity(tier models.StockTier) int {
	switch tier {
	case models.StockTierOutOfStock:
		return 0
	case models.StockTierDanger:
		return 1
	case models.StockTierLow:
		return 2
	default:
		return 3
	}
}
