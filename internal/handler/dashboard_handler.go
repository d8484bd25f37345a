package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/middleware"
	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

type dashboardService interface {
	Home(ctx context.Context, p models.Principal, userID string, q dto.PeriodQuery) (*dto.HomeDashboardResponse, bool, error)
	Bars(ctx context.Context, p models.Principal, userID string, q dto.PeriodQuery) (*dto.BarChart, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	validate *validator.Validate
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, validate *validator.Validate) *DashboardHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &DashboardHandler{service: service, validate: validate}
}

// Home godoc
// @Summary Home dashboard of the caller
// @Tags Dashboard
// @Produce json
// @Param period query string false "7d, 30d, 6m, 1y or custom"
// @Param start query string false "Custom start (YYYY-MM-DD)"
// @Param end query string false "Custom end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/home [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	h.home(c, p, p.UserID)
}

// UserHome godoc
// @Summary Home dashboard of a coached speaker
// @Tags Dashboard
// @Produce json
// @Param id path string true "User ID"
// @Param period query string false "7d, 30d, 6m, 1y or custom"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/dashboard [get]
func (h *DashboardHandler) UserHome(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	target := c.Param("id")
	if !p.CanAccess(target) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	h.home(c, p, target)
}

// Bars godoc
// @Summary Presentation counts per bucket
// @Tags Dashboard
// @Produce json
// @Param period query string false "7d, 30d, 6m, 1y or custom"
// @Param start query string false "Custom start (YYYY-MM-DD)"
// @Param end query string false "Custom end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/bars [get]
func (h *DashboardHandler) Bars(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q, ok := h.periodQuery(c)
	if !ok {
		return
	}
	start := time.Now()
	bars, cacheHit, err := h.service.Bars(c.Request.Context(), p, p.UserID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	setBarWindow(c, bars)
	writeWithMeta(c, http.StatusOK, bars, nil, start)
}

func (h *DashboardHandler) home(c *gin.Context, p models.Principal, userID string) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	q, ok := h.periodQuery(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Home(c.Request.Context(), p, userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	setBarWindow(c, &summary.Bars)
	writeWithMeta(c, http.StatusOK, summary, nil, start)
}

func setBarWindow(c *gin.Context, bars *dto.BarChart) {
	if bars == nil || bars.Period == "" {
		return
	}
	middleware.SetWindow(c, bars.Period, bars.Start, bars.End, bars.Granularity)
}

func (h *DashboardHandler) periodQuery(c *gin.Context) (dto.PeriodQuery, bool) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return q, false
	}
	if err := h.validate.Struct(q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidPeriod.Code, appErrors.ErrInvalidPeriod.Status, "invalid period"))
		return q, false
	}
	return q, true
}
