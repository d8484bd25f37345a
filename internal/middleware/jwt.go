package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/logger"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextTokenKey stores the raw bearer token forwarded upstream.
	ContextTokenKey = "accessToken"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextTokenKey, token)
		c.Set(logger.UserIDKey, claims.SubjectID())
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller stored by JWT.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return models.Principal{}, false
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims == nil {
		return models.Principal{}, false
	}
	return models.Principal{
		UserID: claims.SubjectID(),
		Role:   claims.Role,
		Token:  c.GetString(ContextTokenKey),
	}, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
