package handlers

import (
	"net/http"
	"strings"

	"postboard/models"
	"postboard/repository"

	"github.com/gin-gonic/gin"
)

type commentForm struct {
	Text   string            `json:"text"`
	Errors map[string]string `json:"errors"`
}

type CommentHandler struct {
	Comments repository.CommentRepository
	Posts    repository.PostRepository
}

func NewCommentHandler(comments repository.CommentRepository, posts repository.PostRepository) *CommentHandler {
	return &CommentHandler{Comments: comments, Posts: posts}
}

// AddComment attaches a comment to the post and returns to its detail
// page. An empty comment is dropped silently: the redirect happens
// either way, there is no error page for it.
func (h *CommentHandler) AddComment(c *gin.Context, user *models.User) {
	post, ok := resolvePost(c, h.Posts)
	if !ok {
		return
	}
	text := strings.TrimSpace(c.PostForm("text"))
	if text != "" {
		comment := models.Comment{
			PostID: post.ID,
			UserID: user.ID,
			Text:   text,
		}
		if err := h.Comments.Create(&comment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
			return
		}
	}
	c.Redirect(http.StatusFound, detailPath(post.ID))
}
