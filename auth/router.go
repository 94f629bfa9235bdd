package auth

import (
	"net/http"
	"net/url"

	"postboard/models"
	"postboard/repository"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/auth/login/"

// HandlerFunc receives the signed-in user, pre-loaded by the Router.
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper that adds the auth check + User pre-loading.
// Anonymous requests to wrapped routes are redirected to the login page.
type Router struct {
	Base  *gin.Engine
	Users repository.UserRepository
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	session := LoadSession(c)
	userID := session.UserID()
	if userID == 0 {
		RedirectToLogin(c)
		return
	}
	user, err := cr.Users.ByID(userID)
	if err != nil {
		// Stale cookie for a deleted account
		session.LogoutUser()
		RedirectToLogin(c)
		return
	}
	handler(c, user)
}

func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}
