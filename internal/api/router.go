package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/api/handler"
	"github.com/qs3c/portfolio_server/internal/api/middleware"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/metrics"
)

type Router struct {
	authHandler        *handler.AuthHandler
	commentHandler     *handler.CommentHandler
	blogHandler        *handler.BlogHandler
	projectHandler     *handler.ProjectHandler
	resumeHandler      *handler.ResumeHandler
	certificateHandler *handler.CertificateHandler
	uploadHandler      *handler.UploadHandler
	viewHandler        *handler.ViewHandler
	websocketHandler   *handler.WebSocketHandler
	healthHandler      *handler.HealthHandler
	rdb                *redis.Client
	cfg                *config.Config

	// 本地内存存储时挂载到 /storage 下
	storage http.Handler
}

func NewRouter(
	authHandler *handler.AuthHandler,
	commentHandler *handler.CommentHandler,
	blogHandler *handler.BlogHandler,
	projectHandler *handler.ProjectHandler,
	resumeHandler *handler.ResumeHandler,
	certificateHandler *handler.CertificateHandler,
	uploadHandler *handler.UploadHandler,
	viewHandler *handler.ViewHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	rdb *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:        authHandler,
		commentHandler:     commentHandler,
		blogHandler:        blogHandler,
		projectHandler:     projectHandler,
		resumeHandler:      resumeHandler,
		certificateHandler: certificateHandler,
		uploadHandler:      uploadHandler,
		viewHandler:        viewHandler,
		websocketHandler:   websocketHandler,
		healthHandler:      healthHandler,
		rdb:                rdb,
		cfg:                cfg,
	}
}

// MountStorage 暴露内存存储的读写接口，供本地开发直传使用
func (r *Router) MountStorage(h http.Handler) {
	r.storage = h
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(metrics.GinMiddleware())
	engine.Use(log.DefaultGinLoggerMiddleware())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	if r.storage != nil {
		engine.Any("/storage/*key", gin.WrapH(http.StripPrefix("/storage", r.storage)))
	}

	adminAuth := middleware.AdminAuth(r.cfg.JWT.Secret)
	commentLimit := middleware.RateLimit(r.rdb, "comments", r.cfg.RateLimit.CommentsPerMinute, time.Minute)
	viewLimit := middleware.RateLimit(r.rdb, "views", r.cfg.RateLimit.ViewsPerMinute, time.Minute)

	api := engine.Group("/api")
	{
		// 认证
		auth := api.Group("/auth")
		{
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubLogin)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
			auth.GET("/me", adminAuth, r.authHandler.Me)
		}

		// 评论
		api.GET("/comments", r.commentHandler.List)
		api.POST("/comments", commentLimit, r.commentHandler.Create)
		api.DELETE("/comments", r.commentHandler.Delete)

		// 访问统计
		api.GET("/views", r.viewHandler.Counts)
		api.POST("/views", viewLimit, r.viewHandler.Record)

		// 博客
		blog := api.Group("/blog-posts")
		{
			blog.GET("", r.blogHandler.List)
			blog.GET("/search", r.blogHandler.Search)
			blog.GET("/:id", r.blogHandler.Get)
			blog.POST("", adminAuth, r.blogHandler.Create)
			blog.PUT("/:id", adminAuth, r.blogHandler.Update)
			blog.DELETE("/:id", adminAuth, r.blogHandler.Delete)
		}

		// 项目
		projects := api.Group("/projects")
		{
			projects.GET("", r.projectHandler.List)
			projects.GET("/:id", r.projectHandler.Get)
			projects.POST("", adminAuth, r.projectHandler.Create)
			projects.PUT("/:id", adminAuth, r.projectHandler.Update)
			projects.DELETE("/:id", adminAuth, r.projectHandler.Delete)
		}

		// 简历
		api.GET("/resume", r.resumeHandler.Get)
		api.PUT("/resume", adminAuth, r.resumeHandler.Replace)
		api.DELETE("/resume", adminAuth, r.resumeHandler.Delete)

		// 证书
		certs := api.Group("/certificates")
		{
			certs.GET("", r.certificateHandler.List)
			certs.GET("/:id", r.certificateHandler.Get)
			certs.POST("", adminAuth, r.certificateHandler.Create)
			certs.PUT("/:id", adminAuth, r.certificateHandler.Update)
			certs.DELETE("/:id", adminAuth, r.certificateHandler.Delete)
		}

		// 上传
		upload := api.Group("/upload")
		upload.Use(adminAuth)
		{
			upload.POST("", r.uploadHandler.Proxied)
			upload.POST("/direct", r.uploadHandler.Direct)
			upload.POST("/direct/complete", r.uploadHandler.Complete)
		}

		// WebSocket 自行校验 query 中的 token
		api.GET("/admin/ws", r.websocketHandler.Handle)

		admin := api.Group("/admin")
		admin.Use(adminAuth)
		{
			admin.GET("/comments", r.commentHandler.AdminList)
			admin.DELETE("/comments/:id", r.commentHandler.AdminDelete)
			admin.GET("/views/selftest", r.viewHandler.SelfTest)
		}
	}

	return engine
}
