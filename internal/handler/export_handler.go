package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/internal/service"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/export"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, p models.Principal, req dto.ExportRequest) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, p models.Principal, id string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes history export jobs and downloads.
type ExportHandler struct {
	service exportJobService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportJobService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Create godoc
// @Summary Request a history export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	status, err := h.service.GetStatus(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	contentType := "application/octet-stream"
	if renderer, err := export.RendererFor(export.Format(result.Format)); err == nil {
		contentType = renderer.ContentType()
	}
	response.Attachment(c, result.Filename, contentType, info.Size(), result.File)
}
