package cache

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"odontologia/metrics"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves cached copies of public pages. Requests for which
// bypass returns true (a signed-in administrator) are neither served from
// nor stored in the cache.
func Middleware(p *PageCache, bypass func(c *gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || (bypass != nil && bypass(c)) {
			c.Next()
			return
		}

		// query strings do not change the page; keying on them would let
		// any client grow the cache directory
		key := c.Request.URL.Path

		if cached, found := p.Read(key); found {
			metrics.PageCache.WithLabelValues("hit").Inc()
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		metrics.PageCache.WithLabelValues("miss").Inc()
		c.Header("X-Cache", "MISS")

		gen := p.Generation()
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Only cache successful HTML responses
		if c.Writer.Status() == http.StatusOK &&
			c.Writer.Header().Get("Content-Type") == "text/html; charset=utf-8" {
			stored, err := p.WriteIfCurrent(key, writer.body.String(), gen)
			if err != nil {
				slog.Error("failed to write page cache", "key", key, "error", err)
			} else if !stored {
				slog.Debug("page rendered before invalidation, not cached", "key", key)
			}
		}
	}
}
