package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"socialnet/internal/infra/config"
	"socialnet/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	User           UserHTTP
	Social         SocialHTTP
	Post           PostHTTP
	Message        MessageHTTP
	Notification   NotificationHTTP
	Upload         UploadHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
	}
	if h.User != nil {
		api.GET("/me", h.User.Me)
		api.PATCH("/me", h.User.UpdateMe)
		api.PUT("/me/push-token", h.User.SetPushToken)
		api.GET("/users/search", h.User.Search)
		api.GET("/users/:id", h.User.Get)
	}
	if h.Social != nil {
		api.POST("/users/:id/follow", h.Social.Follow)
		api.DELETE("/users/:id/follow", h.Social.Unfollow)
		api.GET("/users/:id/followers", h.Social.Followers)
		api.GET("/users/:id/following", h.Social.Following)
		api.GET("/suggestions", h.Social.Suggestions)
	}
	if h.Post != nil {
		api.POST("/posts", h.Post.Create)
		api.GET("/feed", h.Post.Feed)
		api.GET("/users/:id/posts", h.Post.UserPosts)
		api.GET("/posts/:id", h.Post.Get)
		api.DELETE("/posts/:id", h.Post.Delete)
		api.POST("/posts/:id/comments", h.Post.AddComment)
		api.DELETE("/posts/:id/comments/:comment_id", h.Post.DeleteComment)
		api.POST("/posts/:id/like", h.Post.ToggleLike)
	}
	if h.Message != nil {
		api.POST("/messages", h.Message.Send)
		api.DELETE("/messages/:id", h.Message.Delete)
		api.GET("/conversations", h.Message.Inbox)
		api.GET("/conversations/:user_id/messages", h.Message.History)
		api.POST("/conversations/:user_id/read", h.Message.MarkRead)
	}
	if h.Notification != nil {
		api.GET("/notifications", h.Notification.List)
		api.POST("/notifications/read", h.Notification.MarkAllRead)
		api.GET("/notifications/unread-count", h.Notification.UnreadCount)
	}
	if h.Upload != nil {
		api.POST("/uploads/photo", h.Upload.UploadPhoto)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.POST("/users/:id/block", h.Admin.BlockUser)
		adminGroup.POST("/users/:id/unblock", h.Admin.UnblockUser)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
