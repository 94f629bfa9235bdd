package handlers

import (
	"postboard/storage"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	Media storage.Storage
}

func NewMediaHandler(media storage.Storage) *MediaHandler {
	return &MediaHandler{Media: media}
}

// Serve streams a stored post image.
func (h *MediaHandler) Serve(c *gin.Context) {
	h.Media.Serve(c.Param("name"), c.Request, c.Writer)
}
