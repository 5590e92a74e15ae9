// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/database"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

// OrderService owns the order ledger: totals are always derived from the item
// snapshots and status only moves forward through the lifecycle.
type OrderService struct {
	db                  *gorm.DB
	customerService     *CustomerService
	notificationService *NotificationService
}

func NewOrderService(db *gorm.DB, customerService *CustomerService, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		customerService:     customerService,
		notificationService: notificationService,
	}
}

type OrderItemInput struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type CreateOrderInput struct {
	CustomerPhone string           `json:"customer_phone,omitempty" validate:"omitempty,phone"`
	CustomerName  string           `json:"customer_name,omitempty" validate:"max=255"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string           `json:"notes,omitempty" validate:"max=2000"`
}

type OrderFilters struct {
	Status string
}

// CreateOrder records an order. Item prices are frozen at creation: when the
// input omits a price the item name is resolved against the catalog (exact
// normalized match first, then closest name within a small edit distance, so
// a caller's "tomatos" still finds "Tomatoes") and the current price and
// canonical name are snapshotted. Names with no catalog match are permitted
// (phone orders often mention products not yet catalogued) with a zero price
// for manual follow-up.
func (s *OrderService) CreateOrder(ownerID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid order: %v", err)
	}
	if len(input.Items) == 0 {
		return nil, apperrors.Validation("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.Validation("item quantity must be positive")
		}
		if item.Price != nil && item.Price.IsNegative() {
			return nil, apperrors.Validation("item price cannot be negative")
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, apperrors.Validation("item name is required")
		}
	}

	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		items := make(models.OrderItems, 0, len(input.Items))
		for _, in := range input.Items {
			item := models.OrderItem{
				Name:     strings.TrimSpace(in.Name),
				Quantity: in.Quantity,
			}
			if in.Price != nil {
				item.Price = *in.Price
			} else if product := s.resolveCatalogItem(tx, ownerID, in.Name); product != nil {
				item.Price = product.Price
				item.Name = product.Name
			} else {
				item.Price = decimal.Zero
			}
			items = append(items, item)
		}

		order = models.Order{
			OwnerID:       ownerID,
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			CustomerName:  strings.TrimSpace(input.CustomerName),
			Items:         items,
			Status:        models.OrderStatusPending,
			Timestamp:     time.Now(),
			Notes:         input.Notes,
		}
		order.Total = order.ComputeTotal()

		if input.CustomerPhone != "" {
			customer, err := s.customerService.FindOrCreateByPhone(tx, ownerID, input.CustomerPhone, input.CustomerName)
			if err != nil {
				return err
			}
			if customer != nil {
				order.CustomerID = &customer.ID
				if order.CustomerName == "" {
					order.CustomerName = customer.Name
				}
			}
		}

		return tx.Create(&order).Error
	})

	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		title := "New order received"
		message := fmt.Sprintf("Order for %s totalling %s is waiting for confirmation.",
			orderCustomerLabel(&order), order.Total.StringFixed(2))
		if nerr := s.notificationService.CreateNotification(ownerID, models.NotificationTypeOrder, title, message); nerr != nil {
			// Feed entry only; the order itself is committed.
			logrus.WithError(nerr).Warn("Failed to create order notification")
		}
	}

	return &order, nil
}

func orderCustomerLabel(order *models.Order) string {
	if order.CustomerName != "" {
		return order.CustomerName
	}
	if order.CustomerPhone != "" {
		return order.CustomerPhone
	}
	return "walk-in customer"
}

// resolveCatalogItem finds the product an ordered item name refers to: an
// exact normalized match wins, otherwise the closest catalog name within the
// edit-distance budget. Nil when nothing is close enough.
func (s *OrderService) resolveCatalogItem(tx *gorm.DB, ownerID uuid.UUID, name string) *models.Product {
	key := models.NormalizeProductName(name)
	if key == "" {
		return nil
	}

	var product models.Product
	err := tx.Where("owner_id = ? AND name_key = ?", ownerID, key).First(&product).Error
	if err == nil {
		return &product
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Warn("Catalog lookup failed during order item resolution")
		return nil
	}

	var products []models.Product
	if err := tx.Where("owner_id = ?", ownerID).Find(&products).Error; err != nil {
		logrus.WithError(err).Warn("Catalog scan failed during order item resolution")
		return nil
	}

	best := -1
	bestDistance := fuzzyNameBudget(key) + 1
	for i := range products {
		if d := editDistance(key, products[i].NameKey); d < bestDistance {
			bestDistance = d
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &products[best]
}

// fuzzyNameBudget allows more slack for longer names; very short names match
// only exactly so "tea" can never resolve to "pea".
func fuzzyNameBudget(key string) int {
	switch {
	case len(key) >= 8:
		return 2
	case len(key) >= 4:
		return 1
	default:
		return 0
	}
}

// editDistance is the Levenshtein distance between two normalized name keys.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr := make([]int, len(rb)+1)
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev = curr
	}
	return prev[len(rb)]
}

// UpdateStatus advances an order along pending → confirmed → dispatched →
// delivered. Re-applying the current status is an idempotent no-op; anything
// else — skipping ahead, moving backward, leaving delivered — is rejected.
// The read-validate-write runs in one transaction so concurrent updates on
// the same order serialize.
func (s *OrderService) UpdateStatus(ownerID, orderID uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, apperrors.Validation("unknown order status %q", newStatus)
	}

	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", orderID, ownerID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if newStatus == order.Status {
			return nil
		}
		if newStatus != order.Status.NextStatus() {
			return apperrors.InvalidTransition("cannot move order from %s to %s", order.Status, newStatus)
		}

		order.Status = newStatus
		return tx.Save(&order).Error
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateNotes replaces the order's free-text notes.
func (s *OrderService) UpdateNotes(ownerID, orderID uuid.UUID, notes string) (*models.Order, error) {
	if len(notes) > 2000 {
		return nil, apperrors.Validation("notes too long")
	}

	var order models.Order
	if err := s.db.Where("id = ? AND owner_id = ?", orderID, ownerID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	order.Notes = notes
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order notes: %w", err)
	}
	return &order, nil
}

// ListOrders returns the owner's orders, newest first, optionally filtered by
// status.
func (s *OrderService) ListOrders(ownerID uuid.UUID, filters OrderFilters, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{}).Where("owner_id = ?", ownerID)

	if filters.Status != "" {
		status := models.OrderStatus(filters.Status)
		if !status.Valid() {
			return nil, apperrors.Validation("unknown order status %q", filters.Status)
		}
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("customer_name LIKE ? OR customer_phone LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = query.Preload("Customer")
	query = utils.ApplySort(query, params, "timestamp", "timestamp", "total", "status")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

// GetOrder fetches one order scoped to the owner.
func (s *OrderService) GetOrder(ownerID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Customer").Where("id = ? AND owner_id = ?", orderID, ownerID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}
