package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"postboard/auth"
	"postboard/models"
	"postboard/pagination"
	"postboard/repository"
	"postboard/storage"
	"postboard/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Uploaded images are bounded to this many pixels on the longest side.
const imageMaxSize = 1280

type PostHandler struct {
	Posts    repository.PostRepository
	Groups   repository.GroupRepository
	Users    repository.UserRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Media    storage.Storage
	PageSize int
}

func NewPostHandler(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	media storage.Storage,
	pageSize int,
) *PostHandler {
	return &PostHandler{
		Posts:    posts,
		Groups:   groups,
		Users:    users,
		Comments: comments,
		Follows:  follows,
		Media:    media,
		PageSize: pageSize,
	}
}

// postForm carries a create/edit submission back to the template,
// together with its field-level validation errors.
type postForm struct {
	Text    string            `json:"text"`
	GroupID *uint64           `json:"group_id,omitempty"`
	Errors  map[string]string `json:"errors"`
}

func detailPath(postID uint64) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func profilePath(username string) string {
	return "/profile/" + username + "/"
}

// Index renders the front page: all posts, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.Posts.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	page := pagination.Paginate(postInfos(posts), pagination.PageParam(c), h.PageSize)
	render(c, http.StatusOK, "index.tmpl", gin.H{"page_obj": page})
}

// GroupPosts renders one group's posts. Unknown slugs are a 404.
func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, err := h.Groups.BySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	posts, err := h.Posts.ListByGroup(group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 2"})
		return
	}
	page := pagination.Paginate(postInfos(posts), pagination.PageParam(c), h.PageSize)
	render(c, http.StatusOK, "group_list.tmpl", gin.H{
		"group":    groupInfo(group),
		"page_obj": page,
	})
}

// Profile renders an author's posts, with a following flag for the
// signed-in viewer.
func (h *PostHandler) Profile(c *gin.Context) {
	author, err := h.Users.ByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	following := false
	if viewerID := auth.LoadSession(c).UserID(); viewerID != 0 {
		following, _ = h.Follows.Exists(viewerID, author.ID)
	}
	posts, err := h.Posts.ListByAuthor(author.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 2"})
		return
	}
	page := pagination.Paginate(postInfos(posts), pagination.PageParam(c), h.PageSize)
	render(c, http.StatusOK, "profile.tmpl", gin.H{
		"author":    userInfo(author),
		"following": following,
		"page_obj":  page,
	})
}

// Detail renders a single post with its comments and a blank comment
// form. Anyone may view, signed in or not.
func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := resolvePost(c, h.Posts)
	if !ok {
		return
	}
	counter, err := h.Posts.CountByAuthor(post.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	comments, err := h.Comments.ListByPost(post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 2"})
		return
	}
	render(c, http.StatusOK, "post_detail.tmpl", gin.H{
		"post":     postInfo(post),
		"counter":  counter,
		"comments": commentInfos(comments),
		"form":     commentForm{Errors: map[string]string{}},
	})
}

// CreateForm renders the empty post form.
func (h *PostHandler) CreateForm(c *gin.Context, user *models.User) {
	h.renderPostForm(c, postForm{Errors: map[string]string{}}, false, 0)
}

// Create persists a new post for the signed-in user. Invalid input
// re-renders the form with field errors and a success status.
func (h *PostHandler) Create(c *gin.Context, user *models.User) {
	form := h.bindPostForm(c)
	// The upload is only stored once the rest of the form is valid, so a
	// rejected submission leaves nothing behind in media storage
	var imagePath string
	if len(form.Errors) == 0 {
		imagePath = h.saveImage(c, &form)
	}
	if len(form.Errors) > 0 {
		h.renderPostForm(c, form, false, 0)
		return
	}
	post := models.Post{
		UserID:    user.ID,
		Text:      form.Text,
		GroupID:   form.GroupID,
		ImagePath: imagePath,
	}
	if err := h.Posts.Create(&post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	c.Redirect(http.StatusFound, profilePath(user.Username))
}

// EditForm renders the form bound to an existing post. Only the author
// may edit; everyone else is silently sent to the detail page.
func (h *PostHandler) EditForm(c *gin.Context, user *models.User) {
	post, ok := resolvePost(c, h.Posts)
	if !ok {
		return
	}
	if post.UserID != user.ID {
		c.Redirect(http.StatusFound, detailPath(post.ID))
		return
	}
	form := postForm{Text: post.Text, GroupID: post.GroupID, Errors: map[string]string{}}
	h.renderPostForm(c, form, true, post.ID)
}

// Edit updates the post's text, group and image in place. The id, the
// author and the creation time never change.
func (h *PostHandler) Edit(c *gin.Context, user *models.User) {
	post, ok := resolvePost(c, h.Posts)
	if !ok {
		return
	}
	if post.UserID != user.ID {
		c.Redirect(http.StatusFound, detailPath(post.ID))
		return
	}
	form := h.bindPostForm(c)
	var imagePath string
	if len(form.Errors) == 0 {
		imagePath = h.saveImage(c, &form)
	}
	if len(form.Errors) > 0 {
		h.renderPostForm(c, form, true, post.ID)
		return
	}
	post.Text = form.Text
	post.GroupID = form.GroupID
	var oldImage string
	if imagePath != "" {
		oldImage = post.ImagePath
		post.ImagePath = imagePath
	}
	if err := h.Posts.Update(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	// The replaced file goes away only once the row points at the new one
	if oldImage != "" {
		_ = h.Media.Delete(oldImage)
	}
	c.Redirect(http.StatusFound, detailPath(post.ID))
}

// resolvePost loads the post addressed by the :id route parameter and
// answers a 404 page itself when there is no such post.
func resolvePost(c *gin.Context, posts repository.PostRepository) (*models.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return nil, false
	}
	post, err := posts.ByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return nil, false
	}
	return post, true
}

func (h *PostHandler) renderPostForm(c *gin.Context, form postForm, isEdit bool, postID uint64) {
	groups, err := h.Groups.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error 1"})
		return
	}
	groupList := make([]GroupInfo, 0, len(groups))
	for i := range groups {
		groupList = append(groupList, groupInfo(&groups[i]))
	}
	data := gin.H{
		"form":    form,
		"groups":  groupList,
		"is_edit": isEdit,
	}
	if isEdit {
		data["post_id"] = postID
	}
	render(c, http.StatusOK, "create_post.tmpl", data)
}

func (h *PostHandler) bindPostForm(c *gin.Context) postForm {
	form := postForm{Errors: map[string]string{}}
	form.Text = strings.TrimSpace(c.PostForm("text"))
	if form.Text == "" {
		form.Errors["text"] = "This field is required."
	}
	if raw := c.PostForm("group"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			form.Errors["group"] = "Select a valid group."
		} else if _, err := h.Groups.ByID(id); err != nil {
			form.Errors["group"] = "Select a valid group."
		} else {
			form.GroupID = &id
		}
	}
	return form
}

// saveImage stores an uploaded image, if any, and returns its media name.
func (h *PostHandler) saveImage(c *gin.Context, form *postForm) string {
	header, err := c.FormFile("image")
	if err != nil {
		// No upload at all: the image is optional
		return ""
	}
	file, err := header.Open()
	if err != nil {
		form.Errors["image"] = "Could not read the uploaded file."
		return ""
	}
	defer file.Close()
	var converted bytes.Buffer
	if _, err = utils.CreateThumb(imageMaxSize, file, &converted); err != nil {
		form.Errors["image"] = "Upload a valid image."
		return ""
	}
	name := utils.UniqueImageName()
	if _, err = h.Media.Save(name, &converted); err != nil {
		form.Errors["image"] = "Could not store the uploaded file."
		return ""
	}
	return name
}
