// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopdesk/backend/internal/utils"
)

// ownerID resolves the authenticated owner scope set by the auth middleware.
// Writes the error response itself so handlers can bail with a bare return.
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetOwnerIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid authentication context")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param route segment as a UUID.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+param, nil)
		return uuid.Nil, false
	}
	return id, true
}
