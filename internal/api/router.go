package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/pixelpals/config"
	_ "github.com/d60-Lab/pixelpals/docs"
	"github.com/d60-Lab/pixelpals/internal/api/handler"
	"github.com/d60-Lab/pixelpals/internal/api/middleware"
)

const wsPath = "/api/v1/ws"

// NewRouter 注册全部路由
func NewRouter(cfg *config.Config, h *handler.Handler, sessions *middleware.Sessions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{wsPath})))

	r.GET("/healthz", h.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	v1.Use(sessions.Middleware())
	{
		v1.GET("/session", h.GetSession)
		v1.POST("/session", h.Login)
		v1.DELETE("/session", h.Logout)

		v1.GET("/images", h.ListImages)
		v1.POST("/images", h.Upload)
		v1.POST("/images/:id/like", h.Like)
		v1.POST("/images/:id/comments", h.Comment)
		v1.DELETE("/images/:id", h.Delete)

		v1.GET("/notifications", h.Notifications)
		v1.GET("/share", h.Share)
		v1.GET("/status", h.Status)
		v1.GET("/ws", h.Watch)
	}
	return r
}
