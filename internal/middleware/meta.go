package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/oratoria-api/pkg/history"
	"github.com/noah-isme/oratoria-api/pkg/response"
)

const responseMetaKey = "response_meta"

// WithResponseMeta gives every request a response.Meta stamped with the
// timezone dashboard buckets are cut in.
func WithResponseMeta(loc *time.Location) gin.HandlerFunc {
	tz := ""
	if loc != nil {
		tz = loc.String()
	}
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &response.Meta{Timezone: tz})
		c.Next()
	}
}

// SetCacheHit records whether the payload came from cache or the analysis
// backend.
func SetCacheHit(c *gin.Context, hit bool) {
	MetaFrom(c).MarkCache(hit)
}

// SetWindow records the date window a chart payload covers.
func SetWindow(c *gin.Context, period string, start, end time.Time, granularity string) {
	meta := MetaFrom(c)
	meta.Period = period
	meta.WindowStart = start.Format(history.DateLayout)
	meta.WindowEnd = end.Format(history.DateLayout)
	meta.Granularity = granularity
}

// MetaFrom returns the request's metadata, creating it when the middleware
// did not run.
func MetaFrom(c *gin.Context) *response.Meta {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(*response.Meta); ok {
			return typed
		}
	}
	meta := &response.Meta{}
	c.Set(responseMetaKey, meta)
	return meta
}
