package utils

import (
	"log"

	"github.com/gin-gonic/gin"
)

type errorLogWriter struct {
	gin.ResponseWriter
	context *gin.Context
}

func (w *errorLogWriter) Write(b []byte) (int, error) {
	if status := w.context.Writer.Status(); status >= 400 {
		log.Printf("[DEBUG ERROR]: Status %d, Body: %s", status, b)
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs the body of every error response. It reads
// the body as written, so it must be mounted before gzip.
func ErrorLogMiddleware(c *gin.Context) {
	c.Writer = &errorLogWriter{ResponseWriter: c.Writer, context: c}
	c.Next()
}
