package handlers

import (
	"errors"
	"net/http"

	"postboard/models"
	"postboard/pagination"
	"postboard/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FollowHandler struct {
	Follows  repository.FollowRepository
	Users    repository.UserRepository
	Posts    repository.PostRepository
	PageSize int
}

func NewFollowHandler(
	follows repository.FollowRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	pageSize int,
) *FollowHandler {
	return &FollowHandler{Follows: follows, Users: users, Posts: posts, PageSize: pageSize}
}

// FollowIndex renders the feed: posts by authors the user follows.
func (h *FollowHandler) FollowIndex(c *gin.Context, user *models.User) {
	posts, err := h.Posts.ListFeed(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	page := pagination.Paginate(postInfos(posts), pagination.PageParam(c), h.PageSize)
	render(c, http.StatusOK, "follow.tmpl", gin.H{"page_obj": page})
}

// Follow subscribes the user to the author, unless they are the same
// person or the subscription already exists.
func (h *FollowHandler) Follow(c *gin.Context, user *models.User) {
	author, ok := h.resolveAuthor(c)
	if !ok {
		return
	}
	if author.ID != user.ID {
		if err := h.Follows.Follow(user.ID, author.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
			return
		}
	}
	c.Redirect(http.StatusFound, profilePath(author.Username))
}

// Unfollow drops the subscription. Unfollowing someone never followed
// is a no-op.
func (h *FollowHandler) Unfollow(c *gin.Context, user *models.User) {
	author, ok := h.resolveAuthor(c)
	if !ok {
		return
	}
	if err := h.Follows.Unfollow(user.ID, author.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	c.Redirect(http.StatusFound, profilePath(author.Username))
}

func (h *FollowHandler) resolveAuthor(c *gin.Context) (*models.User, bool) {
	author, err := h.Users.ByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return nil, false
	}
	return author, true
}
