package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

// TokenServiceConfig holds the verification settings for access tokens.
type TokenServiceConfig struct {
	Secret string
	Issuer string
	// Leeway tolerates clock skew against the auth provider.
	Leeway time.Duration
}

// TokenService verifies access tokens issued by the external auth provider.
// It never issues tokens.
type TokenService struct {
	cfg TokenServiceConfig
	now func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	if cfg.Leeway < 0 {
		cfg.Leeway = 0
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.cfg.Leeway),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.SubjectID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no subject")
	}
	if claims.Role == "" {
		claims.Role = models.RoleStudent
	}
	return claims, nil
}
