// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authhandler "social_backend/internal/feature/auth/transport/handler"
	userhandler "social_backend/internal/feature/user/transport/handler"
	"social_backend/internal/platform/http/handler"
	"social_backend/internal/platform/http/middleware"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/platform/metrics"
	"social_backend/internal/shared/ratelimiter"
)

// Deps is everything the router needs. Limiter, Metrics and StaticRoot are optional.
type Deps struct {
	Logger      *slog.Logger
	Auth        *authhandler.AuthHandler
	Users       *userhandler.UserHandler
	Verifier    jwtmw.TokenVerifier
	Metrics     *metrics.Metrics
	Limiter     *ratelimiter.RateLimiter
	Ready       map[string]handler.Check
	CORSOrigins []string
	// StaticRoot is the uploads directory served as-is when avatars are stored on local disk.
	StaticRoot string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(d.Logger), middleware.CORS(d.CORSOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(d.Ready))

	if d.StaticRoot != "" {
		root := strings.Trim(d.StaticRoot, "/")
		r.StaticFS("/"+root, http.Dir(d.StaticRoot))
	}

	// トークンがあれば閲覧者を解決する。無効なトークンは匿名として扱う
	api := r.Group("/api", jwtmw.Authenticate(d.Verifier))

	byIP := d.Limiter.Middleware(ratelimiter.KeyByIPAndPath())
	byUser := d.Limiter.Middleware(ratelimiter.KeyByUser(jwtmw.ContextUserID))

	auth := api.Group("/auth")
	{
		auth.POST("/signup", d.Auth.Signup)
		auth.POST("/signin", byIP, d.Auth.Signin)
		auth.GET("/signout", d.Auth.Signout)
	}

	users := api.Group("/users")
	{
		// 認証不要
		users.GET("", d.Users.List)
		users.GET("/profile/:userId", d.Users.GetProfile)
		// 本人のみ（匿名は403）
		users.GET("/:userId", d.Users.GetAuthUser)
	}

	// 認証必須のルート
	protected := users.Group("", jwtmw.RequireAuth())
	{
		protected.GET("/feed/:userId", d.Users.Feed)
		protected.PUT("/follow", byUser, d.Users.Follow)
		protected.PUT("/unfollow", byUser, d.Users.Unfollow)
		protected.PUT("/:userId", d.Users.Update)
		protected.DELETE("/:userId", d.Users.Delete)
	}

	return r
}
