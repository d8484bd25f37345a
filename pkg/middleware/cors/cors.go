package cors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/oratoria-api/pkg/config"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	allowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	exposeHeaders = "X-Request-ID, Content-Disposition, Content-Length"
)

// New returns a CORS middleware for the web client. With no configured
// origins every origin is allowed, but credentials are only granted to
// origins named in the list.
func New(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		origins[strings.TrimRight(origin, "/")] = struct{}{}
	}
	allowAll := len(origins) == 0
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		_, listed := origins[origin]
		switch {
		case origin != "" && listed:
			h.Set("Access-Control-Allow-Origin", c.GetHeader("Origin"))
			h.Set("Access-Control-Allow-Credentials", "true")
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case c.Request.Method == http.MethodOptions:
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
