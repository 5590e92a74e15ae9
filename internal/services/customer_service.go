// internal/services/customer_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type CustomerInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"required,phone"`
	Address string `json:"address,omitempty" validate:"max=500"`
}

// CreateCustomer adds a customer to the owner's book.
func (s *CustomerService) CreateCustomer(ownerID uuid.UUID, input CustomerInput) (*models.Customer, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid customer: %v", err)
	}

	customer := models.Customer{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Address: input.Address,
	}

	if err := s.db.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// FindByPhone looks up a customer by phone within the owner scope.
func (s *CustomerService) FindByPhone(ownerID uuid.UUID, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("owner_id = ? AND phone = ?", ownerID, strings.TrimSpace(phone)).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("customer not found")
		}
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return &customer, nil
}

// FindOrCreateByPhone resolves an order's customer relation from a phone
// number, creating a minimal record when the caller is new. Runs inside the
// caller's transaction.
func (s *CustomerService) FindOrCreateByPhone(tx *gorm.DB, ownerID uuid.UUID, phone, name string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}

	var customer models.Customer
	err := tx.Where("owner_id = ? AND phone = ?", ownerID, phone).First(&customer).Error
	if err == nil {
		if name != "" && customer.Name != name {
			customer.Name = name
			if err := tx.Save(&customer).Error; err != nil {
				return nil, fmt.Errorf("failed to update customer name: %w", err)
			}
		}
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if name == "" {
		name = "Unknown caller"
	}
	customer = models.Customer{
		OwnerID: ownerID,
		Name:    name,
		Phone:   phone,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// ListCustomers returns the owner's customers with optional name/phone search.
func (s *CustomerService) ListCustomers(ownerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Customer{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var customers []models.Customer
	query = utils.ApplySort(query, params, "created_at", "name", "phone")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	result := utils.CreatePaginationResult(customers, total, params)
	return &result, nil
}

// GetCustomer fetches one customer scoped to the owner.
func (s *CustomerService) GetCustomer(ownerID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Where("id = ? AND owner_id = ?", customerID, ownerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("customer not found")
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return &customer, nil
}
