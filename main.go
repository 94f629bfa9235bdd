package main

import (
	"html/template"
	"log"
	"strings"
	"time"

	"postboard/auth"
	"postboard/config"
	"postboard/db"
	"postboard/handlers"
	"postboard/models"
	"postboard/pagecache"
	"postboard/repository"
	"postboard/storage"
	"postboard/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
)

func main() {
	db.Init()
	models.Init()
	media := storage.Init()

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}

	// HTML templates
	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	})
	router.LoadHTMLGlob("templates/*.tmpl")

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/"})))
	}

	userRepo := repository.NewUserRepository(db.Instance)
	groupRepo := repository.NewGroupRepository(db.Instance)
	postRepo := repository.NewPostRepository(db.Instance)
	commentRepo := repository.NewCommentRepository(db.Instance)
	followRepo := repository.NewFollowRepository(db.Instance)

	postHandler := handlers.NewPostHandler(
		postRepo, groupRepo, userRepo, commentRepo, followRepo, media, config.PAGE_SIZE)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, postRepo, config.PAGE_SIZE)
	authHandler := handlers.NewAuthHandler(userRepo)
	mediaHandler := handlers.NewMediaHandler(media)

	// Public pages. The front page is served through the full-page cache.
	router.GET("/", pagecache.Middleware(newPageStore()), postHandler.Index)
	router.GET("/group/:slug/", postHandler.GroupPosts)
	router.GET("/profile/:username/", postHandler.Profile)
	router.GET("/posts/:id/", postHandler.Detail)
	router.GET("/media/:name", mediaHandler.Serve)

	// Login flow
	router.GET("/auth/login/", authHandler.LoginForm)
	router.POST("/auth/login/", authHandler.Login)
	router.POST("/auth/logout/", authHandler.Logout)
	router.GET("/auth/signup/", authHandler.SignupForm)
	router.POST("/auth/signup/", authHandler.Signup)

	// Custom Auth Router: everything below requires a signed-in user
	authRouter := &auth.Router{Base: router, Users: userRepo}
	authRouter.GET("/create/", postHandler.CreateForm)
	authRouter.POST("/create/", postHandler.Create)
	authRouter.GET("/posts/:id/edit/", postHandler.EditForm)
	authRouter.POST("/posts/:id/edit/", postHandler.Edit)
	authRouter.POST("/posts/:id/comment/", commentHandler.AddComment)
	authRouter.GET("/follow/", followHandler.FollowIndex)
	authRouter.GET("/profile/:username/follow/", followHandler.Follow)
	authRouter.GET("/profile/:username/unfollow/", followHandler.Unfollow)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}

func newPageStore() pagecache.Store {
	ttl := time.Duration(config.INDEX_CACHE_SECONDS) * time.Second
	if config.REDIS_URL != "" {
		store, err := pagecache.NewRedisStore(config.REDIS_URL, ttl)
		if err != nil {
			log.Fatalf("Bad REDIS_URL: %v", err)
		}
		return store
	}
	return pagecache.NewMemoryStore(ttl)
}
