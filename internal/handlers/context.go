// internal/handlers/context.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

// callerFromContext rebuilds the authenticated principal set by the
// auth middleware. ok is false when the request is unauthenticated or
// the claims are malformed.
func callerFromContext(c *gin.Context) (services.Caller, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return services.Caller{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Caller{}, false
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	return services.Caller{
		ID:   userID,
		Type: models.UserType(userType),
	}, true
}

// propertyIDParam parses the numeric :id path segment.
func propertyIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
