package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT requires a valid bearer token and stores its claims on the context.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed bearer token"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			unauthorized(c, err)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", `Bearer realm="accompaniment-planner"`)
	response.Error(c, err)
	c.Abort()
}
