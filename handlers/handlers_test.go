package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"postboard/auth"
	"postboard/handlers"
	"postboard/models"
	"postboard/repository"
	"postboard/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const pageSize = 10

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	mediaDir string
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Group{}, &models.Post{}, &models.Comment{}, &models.Follow{}))

	app := &testApp{
		db:       db,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
	}

	router := gin.New()
	router.Use(sessions.Sessions("token", cookie.NewStore([]byte("test key"))))

	app.mediaDir = t.TempDir()
	media := storage.NewDiskStorage(app.mediaDir)
	postHandler := handlers.NewPostHandler(
		app.posts, app.groups, app.users, app.comments, app.follows, media, pageSize)
	commentHandler := handlers.NewCommentHandler(app.comments, app.posts)
	followHandler := handlers.NewFollowHandler(app.follows, app.users, app.posts, pageSize)
	authHandler := handlers.NewAuthHandler(app.users)
	mediaHandler := handlers.NewMediaHandler(media)

	router.GET("/", postHandler.Index)
	router.GET("/group/:slug/", postHandler.GroupPosts)
	router.GET("/profile/:username/", postHandler.Profile)
	router.GET("/posts/:id/", postHandler.Detail)
	router.GET("/media/:name", mediaHandler.Serve)
	router.GET("/auth/login/", authHandler.LoginForm)
	router.POST("/auth/login/", authHandler.Login)
	router.POST("/auth/logout/", authHandler.Logout)
	router.GET("/auth/signup/", authHandler.SignupForm)
	router.POST("/auth/signup/", authHandler.Signup)

	authRouter := &auth.Router{Base: router, Users: app.users}
	authRouter.GET("/create/", postHandler.CreateForm)
	authRouter.POST("/create/", postHandler.Create)
	authRouter.GET("/posts/:id/edit/", postHandler.EditForm)
	authRouter.POST("/posts/:id/edit/", postHandler.Edit)
	authRouter.POST("/posts/:id/comment/", commentHandler.AddComment)
	authRouter.GET("/follow/", followHandler.FollowIndex)
	authRouter.GET("/profile/:username/follow/", followHandler.Follow)
	authRouter.GET("/profile/:username/unfollow/", followHandler.Unfollow)

	app.router = router
	return app
}

func (app *testApp) do(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

// signup registers a user through the real flow and returns the session
// cookies of the fresh account.
func (app *testApp) signup(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	w := app.do("POST", "/auth/signup/", url.Values{
		"username": {username},
		"password": {"secret"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/"+username+"/", w.Header().Get("Location"))
	return w.Result().Cookies()
}

func (app *testApp) createPost(t *testing.T, username, text string) *models.Post {
	t.Helper()
	user, err := app.users.ByUsername(username)
	require.NoError(t, err)
	post := &models.Post{UserID: user.ID, Text: text}
	require.NoError(t, app.posts.Create(post))
	return post
}

func (app *testApp) postCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, app.db.Model(&models.Post{}).Count(&count).Error)
	return count
}

func decodePage(t *testing.T, body *bytes.Buffer) handlers.PostPage {
	t.Helper()
	var data struct {
		PageObj handlers.PostPage `json:"page_obj"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &data))
	return data.PageObj
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "leo")
	for i := 0; i < 11; i++ {
		app.createPost(t, "leo", "post")
	}

	w := app.do("GET", "/?format=json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePage(t, w.Body)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)

	w = app.do("GET", "/?format=json&page=2", nil, nil)
	page = decodePage(t, w.Body)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)
}

func TestGroupPostsUnknownSlug(t *testing.T) {
	app := newTestApp(t)
	w := app.do("GET", "/group/no-such-group/?format=json", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupPostsFiltersByGroup(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "leo")
	user, err := app.users.ByUsername("leo")
	require.NoError(t, err)
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, app.groups.Create(group))
	require.NoError(t, app.posts.Create(&models.Post{UserID: user.ID, GroupID: &group.ID, Text: "meow"}))
	app.createPost(t, "leo", "no group")

	w := app.do("GET", "/group/cats/?format=json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePage(t, w.Body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meow", page.Items[0].Text)
	require.NotNil(t, page.Items[0].Group)
	assert.Equal(t, "cats", page.Items[0].Group.Slug)
}

func TestProfileUnknownUsername(t *testing.T) {
	app := newTestApp(t)
	w := app.do("GET", "/profile/nobody/?format=json", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileFollowingFlag(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	app.signup(t, "mia")

	w := app.do("GET", "/profile/mia/?format=json", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Following bool `json:"following"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.False(t, data.Following)

	app.do("GET", "/profile/mia/follow/", nil, cookies)

	w = app.do("GET", "/profile/mia/?format=json", nil, cookies)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.True(t, data.Following)
}

func TestPostDetail(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	post := app.createPost(t, "leo", "hello")
	app.createPost(t, "leo", "second")
	app.do("POST", detail(post.ID)+"comment/", url.Values{"text": {"nice"}}, cookies)

	w := app.do("GET", detail(post.ID)+"?format=json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Post     handlers.PostInfo      `json:"post"`
		Counter  int64                  `json:"counter"`
		Comments []handlers.CommentInfo `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, "hello", data.Post.Text)
	assert.Equal(t, "leo", data.Post.Author.Username)
	assert.Equal(t, int64(2), data.Counter)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, "nice", data.Comments[0].Text)
}

func TestPostDetailUnknownID(t *testing.T) {
	app := newTestApp(t)
	w := app.do("GET", "/posts/42/?format=json", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do("GET", "/create/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))

	w = app.do("POST", "/create/", url.Values{"text": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, app.postCount(t))
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")

	w := app.do("POST", "/create/", url.Values{"text": {"my first post"}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, int64(1), app.postCount(t))
}

func TestCreatePostEmptyTextRerendersForm(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")

	w := app.do("POST", "/create/?format=json", url.Values{"text": {"   "}}, cookies)
	// Validation failures are not an error status: the form is shown again
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Form struct {
			Errors map[string]string `json:"errors"`
		} `json:"form"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Contains(t, data.Form.Errors, "text")
	assert.Zero(t, app.postCount(t))
}

// postWithImage submits a multipart post form carrying a small PNG.
func (app *testApp) postWithImage(t *testing.T, target, text string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("text", text))
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(0, 0, color.White)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) mediaFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(app.mediaDir)
	require.NoError(t, err)
	return entries
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")

	w := app.postWithImage(t, "/create/", "look at this", cookies)
	require.Equal(t, http.StatusFound, w.Code)

	posts, err := app.posts.ListAll()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].ImagePath)

	// The stored image is served back
	w = app.do("GET", "/media/"+posts[0].ImagePath, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())
}

func TestRejectedPostStoresNoImage(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")

	w := app.postWithImage(t, "/create/?format=json", "   ", cookies)
	require.Equal(t, http.StatusOK, w.Code) // form shown again
	assert.Zero(t, app.postCount(t))
	// The upload was never persisted, so nothing is orphaned
	assert.Empty(t, app.mediaFiles(t))
}

func TestEditReplacesImage(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	require.Equal(t, http.StatusFound, app.postWithImage(t, "/create/", "with image", cookies).Code)

	posts, err := app.posts.ListAll()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	oldImage := posts[0].ImagePath

	w := app.postWithImage(t, detail(posts[0].ID)+"edit/", "new image", cookies)
	require.Equal(t, http.StatusFound, w.Code)

	reloaded, err := app.posts.ByID(posts[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldImage, reloaded.ImagePath)

	// Only the replacement remains on disk
	entries := app.mediaFiles(t)
	require.Len(t, entries, 1)
	assert.Equal(t, reloaded.ImagePath, entries[0].Name())
}

func TestEditByNonOwnerRedirectsUnchanged(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "leo")
	intruder := app.signup(t, "mia")
	post := app.createPost(t, "leo", "original")

	w := app.do("GET", detail(post.ID)+"edit/", nil, intruder)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail(post.ID), w.Header().Get("Location"))

	w = app.do("POST", detail(post.ID)+"edit/", url.Values{"text": {"hijacked"}}, intruder)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail(post.ID), w.Header().Get("Location"))

	reloaded, err := app.posts.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Text)
}

func TestEditByOwner(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	post := app.createPost(t, "leo", "original")

	w := app.do("POST", detail(post.ID)+"edit/", url.Values{"text": {"updated"}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail(post.ID), w.Header().Get("Location"))

	reloaded, err := app.posts.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", reloaded.Text)
	assert.Equal(t, post.CreatedAt, reloaded.CreatedAt)
}

func TestAddCommentAlwaysRedirects(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	post := app.createPost(t, "leo", "hello")

	w := app.do("POST", detail(post.ID)+"comment/", url.Values{"text": {"great"}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail(post.ID), w.Header().Get("Location"))

	// An empty comment is dropped, but the redirect is the same
	w = app.do("POST", detail(post.ID)+"comment/", url.Values{"text": {"  "}}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail(post.ID), w.Header().Get("Location"))

	comments, err := app.comments.ListByPost(post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestFollowTwiceCreatesOneRow(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	app.signup(t, "mia")

	for i := 0; i < 2; i++ {
		w := app.do("GET", "/profile/mia/follow/", nil, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/mia/", w.Header().Get("Location"))
	}

	var count int64
	app.db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSelfFollowIsIgnored(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")

	w := app.do("GET", "/profile/leo/follow/", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)

	var count int64
	app.db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestUnfollowTwice(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "leo")
	app.signup(t, "mia")
	app.do("GET", "/profile/mia/follow/", nil, cookies)

	for i := 0; i < 2; i++ {
		w := app.do("GET", "/profile/mia/unfollow/", nil, cookies)
		assert.Equal(t, http.StatusFound, w.Code)
	}

	var count int64
	app.db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestFollowIndex(t *testing.T) {
	app := newTestApp(t)
	leo := app.signup(t, "leo")
	noah := app.signup(t, "noah")
	app.signup(t, "mia")
	app.createPost(t, "mia", "from mia")

	app.do("GET", "/profile/mia/follow/", nil, leo)

	w := app.do("GET", "/follow/?format=json", nil, leo)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePage(t, w.Body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "from mia", page.Items[0].Text)

	w = app.do("GET", "/follow/?format=json", nil, noah)
	require.Equal(t, http.StatusOK, w.Code)
	page = decodePage(t, w.Body)
	assert.Empty(t, page.Items)
}

func TestFollowIndexRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	w := app.do("GET", "/follow/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Ffollow%2F", w.Header().Get("Location"))
}

func TestLoginLogout(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "leo")

	w := app.do("POST", "/auth/login/?format=json", url.Values{
		"username": {"leo"},
		"password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code) // form shown again
	assert.Contains(t, w.Body.String(), "Wrong username or password.")

	w = app.do("POST", "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"secret"},
		"next":     {"/create/"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	w = app.do("POST", "/auth/logout/", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
}

func detail(postID uint64) string {
	return "/posts/" + strconv.FormatUint(postID, 10) + "/"
}
