package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/oratoria-api/internal/middleware"
	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

// requirePrincipal returns the authenticated caller or writes a 401.
func requirePrincipal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Principal{}, false
	}
	return p, true
}

// targetUser resolves whose data a request reads. The optional userId query
// parameter is honoured for coaches and admins only.
func targetUser(c *gin.Context, p models.Principal) (string, bool) {
	target := strings.TrimSpace(c.Query("userId"))
	if target == "" {
		return p.UserID, true
	}
	if !p.CanAccess(target) {
		response.Error(c, appErrors.ErrForbidden)
		return "", false
	}
	return target, true
}

func validate(v *validator.Validate, payload interface{}) error {
	if err := v.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}

func writeWithMeta(c *gin.Context, status int, data interface{}, pagination *models.Pagination, start time.Time) {
	meta := middleware.MetaFrom(c)
	meta.ProcessingTimeMS = time.Since(start).Milliseconds()
	response.JSON(c, status, data, pagination, meta)
}
