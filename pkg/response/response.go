package response

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Meta       *Meta              `json:"meta,omitempty"`
}

// Source values for Meta.Source.
const (
	SourceCache    = "cache"
	SourceUpstream = "upstream"
)

// Meta describes how a view was produced: whether it came from cache, which
// date window it covers and the timezone its buckets were cut in.
type Meta struct {
	CacheHit         *bool  `json:"cache_hit,omitempty"`
	Source           string `json:"source,omitempty"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	Period           string `json:"period,omitempty"`
	WindowStart      string `json:"window_start,omitempty"`
	WindowEnd        string `json:"window_end,omitempty"`
	Granularity      string `json:"granularity,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
}

// MarkCache records whether the payload was served from cache.
func (m *Meta) MarkCache(hit bool) {
	m.CacheHit = &hit
	m.Source = SourceUpstream
	if hit {
		m.Source = SourceCache
	}
}

// JSON sends a success response with optional pagination and metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta *Meta) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Pagination: pagination, Meta: meta})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil, nil)
}

// Accepted responds with HTTP 202 for work handed to a background queue.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data, nil, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Attachment streams a file download of size bytes.
func Attachment(c *gin.Context, filename, contentType string, size int64, body io.Reader) {
	noStore(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK, size, contentType, body, nil)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
