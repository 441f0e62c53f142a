package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/accompaniment-planner-api/internal/middleware"
	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// specialistScope resolves whose plan the request acts on. Specialists act on
// their own; admins name one through requested or the specialistId query.
// It writes the error response and returns "" when the caller may not proceed.
func specialistScope(c *gin.Context, requested string) string {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return ""
	}
	if requested == "" {
		requested = strings.TrimSpace(c.Query("specialistId"))
	}
	switch {
	case requested == "" || requested == claims.UserID:
		if claims.Role == models.RoleAdmin && requested == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "specialistId is required for admins"))
			return ""
		}
		return claims.UserID
	case claims.Role == models.RoleAdmin:
		return requested
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "specialists may only act on their own plan"))
		return ""
	}
}
