package pagecache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware replays a cached page when one exists for the request path
// (including the query string), otherwise captures the rendered response
// and stores it. Only successful GET responses are cached.
func Middleware(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := c.Request.URL.RequestURI()
		if raw, ok := store.Get(key); ok {
			if page, err := decodePage(raw); err == nil {
				c.Data(page.Status, page.ContentType, page.Body)
				c.Abort()
				return
			}
		}
		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := capture.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		raw, err := encodePage(cachedPage{
			Status:      status,
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.buf.Bytes(),
		})
		if err == nil {
			store.Set(key, raw)
		}
	}
}
