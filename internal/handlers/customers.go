// internal/handlers/customers.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/backend/internal/services"
	"github.com/shopdesk/backend/internal/utils"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	var input services.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	customer, err := h.customerService.CreateCustomer(id, input)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, customer)
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.customerService.ListCustomers(id, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	customerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(id, customerID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, customer)
}

// FindByPhone resolves a caller to an existing customer, used by the call
// intake screen to prefill details.
func (h *CustomerHandler) FindByPhone(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	phone := c.Query("phone")
	if phone == "" {
		utils.BadRequestResponse(c, "Phone query parameter is required", nil)
		return
	}

	customer, err := h.customerService.FindByPhone(id, phone)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, customer)
}
