package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

const uploadField = "audio"

type presentationService interface {
	List(ctx context.Context, p models.Principal, userID string, q dto.HistoryQuery) ([]dto.PresentationItem, *models.Pagination, error)
	AudioURL(ctx context.Context, p models.Principal, userID, id string) (*dto.AudioResponse, error)
	Upload(ctx context.Context, p models.Principal, filename string, size int64, audio io.Reader) (*dto.UploadResponse, error)
	SetFavorite(ctx context.Context, userID, id string, favorite bool) (*dto.FavoriteResponse, error)
}

// PresentationHandler exposes the history list, uploads, audio and favourites.
type PresentationHandler struct {
	service  presentationService
	validate *validator.Validate
}

// NewPresentationHandler constructs the handler.
func NewPresentationHandler(service presentationService, validate *validator.Validate) *PresentationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &PresentationHandler{service: service, validate: validate}
}

// List godoc
// @Summary Paginated presentation history
// @Tags Presentations
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param emotion query string false "Dominant emotion filter"
// @Param favorites query bool false "Only favourites"
// @Param userId query string false "Coached user (coach/admin)"
// @Success 200 {object} response.Envelope
// @Router /presentations [get]
func (h *PresentationHandler) List(c *gin.Context) {
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
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	q.Emotion = strings.ToLower(strings.TrimSpace(q.Emotion))
	if err := validate(h.validate, q); err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	items, page, err := h.service.List(c.Request.Context(), p, userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeWithMeta(c, http.StatusOK, items, page, start)
}

// Upload godoc
// @Summary Upload a recording for analysis
// @Tags Presentations
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Success 201 {object} response.Envelope
// @Router /presentations/upload [post]
func (h *PresentationHandler) Upload(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	header, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "audio file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable audio file"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.service.Upload(c.Request.Context(), p, header.Filename, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Audio godoc
// @Summary Signed audio URL and transcript
// @Tags Presentations
// @Produce json
// @Param id path string true "Presentation ID"
// @Success 200 {object} response.Envelope
// @Router /presentations/{id}/audio [get]
func (h *PresentationHandler) Audio(c *gin.Context) {
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
	audio, err := h.service.AudioURL(c.Request.Context(), p, userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audio, nil, nil)
}

// AddFavorite godoc
// @Summary Mark a presentation as favourite
// @Tags Presentations
// @Produce json
// @Param id path string true "Presentation ID"
// @Success 200 {object} response.Envelope
// @Router /presentations/{id}/favorite [put]
func (h *PresentationHandler) AddFavorite(c *gin.Context) {
	h.setFavorite(c, true)
}

// RemoveFavorite godoc
// @Summary Unmark a favourite presentation
// @Tags Presentations
// @Produce json
// @Param id path string true "Presentation ID"
// @Success 200 {object} response.Envelope
// @Router /presentations/{id}/favorite [delete]
func (h *PresentationHandler) RemoveFavorite(c *gin.Context) {
	h.setFavorite(c, false)
}

func (h *PresentationHandler) setFavorite(c *gin.Context, favorite bool) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := h.service.SetFavorite(c.Request.Context(), p.UserID, c.Param("id"), favorite)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, nil)
}
