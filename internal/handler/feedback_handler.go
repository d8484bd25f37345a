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
	"github.com/noah-isme/oratoria-api/pkg/language"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

type feedbackService interface {
	Detail(ctx context.Context, p models.Principal, userID, id string) (*dto.FeedbackViewResponse, bool, error)
	AnalyzeText(text string) language.Metrics
	Suggestions(raw, text string) dto.SuggestionsResponse
}

// FeedbackHandler serves the per-presentation feedback screen and the
// language analysis endpoints.
type FeedbackHandler struct {
	service  feedbackService
	validate *validator.Validate
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service feedbackService, validate *validator.Validate) *FeedbackHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackHandler{service: service, validate: validate}
}

// Detail godoc
// @Summary Feedback view of one presentation
// @Tags Feedback
// @Produce json
// @Param id path string true "Presentation ID"
// @Param userId query string false "Coached user (coach/admin)"
// @Success 200 {object} response.Envelope
// @Router /presentations/{id}/feedback [get]
func (h *FeedbackHandler) Detail(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	userID, ok := targetUser(c, p)
	if !ok {
		return
	}
	start := time.Now()
	view, cacheHit, err := h.service.Detail(c.Request.Context(), p, userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	writeWithMeta(c, http.StatusOK, view, nil, start)
}

// Analyze godoc
// @Summary Language metrics of free text
// @Tags Language
// @Accept json
// @Produce json
// @Param payload body dto.AnalyzeTextRequest true "Text"
// @Success 200 {object} response.Envelope
// @Router /language/analyze [post]
func (h *FeedbackHandler) Analyze(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := validate(h.validate, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.AnalyzeText(req.Text), nil, nil)
}

// Suggestions godoc
// @Summary Split a suggestions block into items
// @Tags Language
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionsRequest true "Suggestions"
// @Success 200 {object} response.Envelope
// @Router /language/suggestions [post]
func (h *FeedbackHandler) Suggestions(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.SuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := validate(h.validate, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Suggestions(req.Raw, req.Text), nil, nil)
}
