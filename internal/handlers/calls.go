// internal/handlers/calls.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopdesk/backend/internal/services"
	"github.com/shopdesk/backend/internal/utils"
)

type CallHandler struct {
	callService *services.CallService
}

func NewCallHandler(callService *services.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

// ProcessCall runs a transcript through the intake pipeline. The response
// carries the resulting call record; its status tells the caller whether an
// order was auto-created.
func (h *CallHandler) ProcessCall(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	var input services.ProcessCallInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	call, err := h.callService.ProcessCall(c.Request.Context(), id, input)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, call)
}

// ConvertCall manually converts a reviewed call into an order.
func (h *CallHandler) ConvertCall(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	callID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	call, err := h.callService.ConvertCall(id, callID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, call)
}

func (h *CallHandler) ListCalls(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.callService.ListCalls(id, params.Status, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

func (h *CallHandler) GetCall(c *gin.Context) {
	id, ok := ownerID(c)
	if !ok {
		return
	}
	callID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	call, err := h.callService.GetCall(id, callID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, call)
}
