// internal/handlers/inventory.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/backend/internal/services"
	"github.com/shopdesk/backend/internal/utils"
)

type InventoryHandler struct {
	catalogService *services.CatalogService
}

func NewInventoryHandler(catalogService *services.CatalogService) *InventoryHandler {
	return &InventoryHandler{catalogService: catalogService}
}

// AddProduct creates a product or merges into an existing one with the same
// normalized name.
func (h *InventoryHandler) AddProduct(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	var draft services.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	result, err := h.catalogService.AddOrMergeProduct(id, draft)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	if result.Merged {
		utils.SuccessResponse(c, result)
		return
	}
	utils.CreatedResponse(c, result)
}

func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var patch services.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	result, err := h.catalogService.UpdateProduct(id, productID, patch)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(id, productID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product deleted"})
}

func (h *InventoryHandler) ListProducts(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.catalogService.GetProducts(id, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

func (h *InventoryHandler) GetProduct(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.catalogService.GetProduct(id, productID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
