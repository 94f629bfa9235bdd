package handlers

import (
	"net/http"
	"strings"

	"postboard/auth"
	"postboard/models"
	"postboard/repository"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type SignupRequest struct {
	Username string `form:"username" binding:"required"`
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password" binding:"required"`
}

type AuthHandler struct {
	Users repository.UserRepository
}

func NewAuthHandler(users repository.UserRepository) *AuthHandler {
	return &AuthHandler{Users: users}
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.tmpl", gin.H{"next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginRequest{}
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		render(c, http.StatusOK, "login.tmpl", gin.H{
			"error": "Both username and password are required.",
			"next":  req.Next,
		})
		return
	}
	user, err := h.Users.ByUsername(req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		render(c, http.StatusOK, "login.tmpl", gin.H{
			"error": "Wrong username or password.",
			"next":  req.Next,
		})
		return
	}
	auth.LoadSession(c).LogInUser(user.ID)
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	auth.LoadSession(c).LogoutUser()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) SignupForm(c *gin.Context) {
	render(c, http.StatusOK, "signup.tmpl", gin.H{})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	req := SignupRequest{}
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		render(c, http.StatusOK, "signup.tmpl", gin.H{
			"error": "Both username and password are required.",
		})
		return
	}
	user := models.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
	}
	user.SetPassword(req.Password)
	if err := h.Users.Create(&user); err != nil {
		// Almost certainly the unique username index
		render(c, http.StatusOK, "signup.tmpl", gin.H{
			"error": "That username is taken.",
		})
		return
	}
	auth.LoadSession(c).LogInUser(user.ID)
	c.Redirect(http.StatusFound, profilePath(user.Username))
}

// safeNext keeps the post-login redirect on this site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
