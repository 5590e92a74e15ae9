// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/database"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

// CatalogService owns the product records of each shop. Every mutation
// re-classifies the product's stock tier and hands danger-tier transitions to
// the alert service.
type CatalogService struct {
	db           *gorm.DB
	alertService *AlertService
}

func NewCatalogService(db *gorm.DB, alertService *AlertService) *CatalogService {
	return &CatalogService{
		db:           db,
		alertService: alertService,
	}
}

type ProductDraft struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	MinStock      *int            `json:"min_stock,omitempty"`
	Category      string          `json:"category,omitempty" validate:"max=100"`
	SupplierEmail string          `json:"supplier_email,omitempty" validate:"omitempty,email"`
}

type ProductPatch struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	MinStock      *int             `json:"min_stock,omitempty"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	SupplierEmail *string          `json:"supplier_email,omitempty" validate:"omitempty,email"`
}

// ProductResult wraps a product with its computed tier and, for adds, whether
// the draft was merged into an existing entry.
type ProductResult struct {
	Product *models.Product  `json:"product"`
	Tier    models.StockTier `json:"tier"`
	Merged  bool             `json:"merged,omitempty"`
}

func (d *ProductDraft) validate() error {
	if err := utils.ValidateStruct(d); err != nil {
		return apperrors.Validation("invalid product: %v", err)
	}
	if strings.TrimSpace(d.Name) == "" {
		return apperrors.Validation("product name is required")
	}
	if d.Price.IsNegative() {
		return apperrors.Validation("price cannot be negative")
	}
	if d.Quantity < 0 {
		return apperrors.Validation("quantity cannot be negative")
	}
	if d.MinStock != nil && *d.MinStock < 0 {
		return apperrors.Validation("min_stock cannot be negative")
	}
	return nil
}

// AddOrMergeProduct creates a product, or merges into the shop's existing
// product with the same normalized name: quantities are summed, all other
// draft fields overwrite the stored record (last write wins).
func (s *CatalogService) AddOrMergeProduct(ownerID uuid.UUID, draft ProductDraft) (*ProductResult, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	nameKey := models.NormalizeProductName(draft.Name)

	var product models.Product
	var merged bool
	var previousTier models.StockTier
	var existed bool

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		err := tx.Where("owner_id = ? AND name_key = ?", ownerID, nameKey).First(&product).Error

		switch {
		case err == nil:
			existed = true
			previousTier = product.Tier()
			merged = true
			product.Name = strings.TrimSpace(draft.Name)
			product.Quantity += draft.Quantity
			product.Price = draft.Price
			if draft.MinStock != nil {
				product.MinStock = *draft.MinStock
			}
			if draft.Category != "" {
				product.Category = draft.Category
			}
			if draft.SupplierEmail != "" {
				product.SupplierEmail = draft.SupplierEmail
			}
			return tx.Save(&product).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			product = models.Product{
				OwnerID:       ownerID,
				Name:          strings.TrimSpace(draft.Name),
				NameKey:       nameKey,
				Price:         draft.Price,
				Quantity:      draft.Quantity,
				MinStock:      5,
				Category:      "General",
				SupplierEmail: draft.SupplierEmail,
			}
			if draft.MinStock != nil {
				product.MinStock = *draft.MinStock
			}
			if draft.Category != "" {
				product.Category = draft.Category
			}
			return tx.Create(&product).Error

		default:
			return fmt.Errorf("failed to look up product: %w", err)
		}
	})

	if err != nil {
		// A concurrent create of the same name hits the unique index on
		// (owner_id, name_key); retry once so it lands as a merge.
		if isUniqueViolation(err) {
			logrus.WithFields(logrus.Fields{
				"owner_id": ownerID,
				"name_key": nameKey,
			}).Info("Concurrent product create detected, retrying as merge")
			return s.AddOrMergeProduct(ownerID, draft)
		}
		return nil, err
	}

	s.evaluateTierTransition(&product, previousTier, existed)

	return &ProductResult{
		Product: &product,
		Tier:    product.Tier(),
		Merged:  merged,
	}, nil
}

// UpdateProduct applies a partial patch to an owner's product.
func (s *CatalogService) UpdateProduct(ownerID, productID uuid.UUID, patch ProductPatch) (*ProductResult, error) {
	if err := utils.ValidateStruct(&patch); err != nil {
		return nil, apperrors.Validation("invalid patch: %v", err)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, apperrors.Validation("quantity cannot be negative")
	}
	if patch.MinStock != nil && *patch.MinStock < 0 {
		return nil, apperrors.Validation("min_stock cannot be negative")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.Validation("product name cannot be empty")
	}

	var product models.Product
	var previousTier models.StockTier

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", productID, ownerID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		previousTier = product.Tier()

		if patch.Name != nil {
			product.Name = strings.TrimSpace(*patch.Name)
			product.NameKey = models.NormalizeProductName(*patch.Name)
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		if patch.Quantity != nil {
			product.Quantity = *patch.Quantity
		}
		if patch.MinStock != nil {
			product.MinStock = *patch.MinStock
		}
		if patch.Category != nil {
			product.Category = *patch.Category
		}
		if patch.SupplierEmail != nil {
			product.SupplierEmail = *patch.SupplierEmail
		}

		return tx.Save(&product).Error
	})

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("another product already uses this name")
		}
		return nil, err
	}

	s.evaluateTierTransition(&product, previousTier, true)

	return &ProductResult{
		Product: &product,
		Tier:    product.Tier(),
	}, nil
}

// DeleteProduct removes the catalog entry. Order history keeps its frozen
// item snapshots, so nothing else is touched.
func (s *CatalogService) DeleteProduct(ownerID, productID uuid.UUID) error {
	result := s.db.Where("id = ? AND owner_id = ?", productID, ownerID).Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

// GetProducts lists the owner's catalog with optional search and category
// filters.
func (s *CatalogService) GetProducts(ownerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("name_key LIKE ?", searchTerm)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, "created_at", "name", "price", "quantity", "category")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	results := make([]ProductResult, len(products))
	for i := range products {
		results[i] = ProductResult{
			Product: &products[i],
			Tier:    products[i].Tier(),
		}
	}

	result := utils.CreatePaginationResult(results, total, params)
	return &result, nil
}

// GetProduct fetches one product scoped to the owner. Cross-owner access
// reads as not-found so shops never learn about each other's records.
func (s *CatalogService) GetProduct(ownerID, productID uuid.UUID) (*ProductResult, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND owner_id = ?", productID, ownerID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	return &ProductResult{
		Product: &product,
		Tier:    product.Tier(),
	}, nil
}

// evaluateTierTransition forwards danger-tier entries to the alert service.
// Alerts are advisory: a dispatch failure never fails the mutation that
// triggered it.
func (s *CatalogService) evaluateTierTransition(product *models.Product, previousTier models.StockTier, existed bool) {
	if s.alertService == nil {
		return
	}

	newTier := product.Tier()
	alertable := newTier == models.StockTierDanger || newTier == models.StockTierOutOfStock
	if !alertable {
		return
	}
	if existed && (previousTier == models.StockTierDanger || previousTier == models.StockTierOutOfStock) && previousTier == newTier {
		// Already in this tier, nothing new to report.
		return
	}

	if err := s.alertService.NotifyIfDanger(product); err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Warn("Supplier alert dispatch failed")
	}
}

// isUniqueViolation detects duplicate-key failures from both postgres and the
// sqlite test database.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
