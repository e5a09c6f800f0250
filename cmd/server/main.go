package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/api"
	"github.com/qs3c/portfolio_server/internal/api/handler"
	"github.com/qs3c/portfolio_server/internal/database"
	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/pkg/cache"
	"github.com/qs3c/portfolio_server/internal/pkg/email"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/oauth"
	"github.com/qs3c/portfolio_server/internal/pkg/pubsub"
	"github.com/qs3c/portfolio_server/internal/pkg/queue"
	"github.com/qs3c/portfolio_server/internal/pkg/search"
	"github.com/qs3c/portfolio_server/internal/pkg/storage"
	"github.com/qs3c/portfolio_server/internal/pkg/ws"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.SetLevel(cfg.Log.Level)

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Infof("Database connected (%s)", cfg.Database.Driver)

	// 初始化 Redis，不可用时降级为同步聚合、不限流
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Warnf("Redis unavailable, running degraded: %v", err)
		rdb = nil
	} else {
		log.Infof("Redis connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化存储
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	var memStore *storage.Memory
	if m, ok := store.(*storage.Memory); ok {
		m.SetBaseURL(fmt.Sprintf("http://localhost:%d/storage", cfg.Server.Port))
		memStore = m
	}

	// 可选组件
	var (
		viewQueue *queue.Queue
		states    *oauth.StateStore
	)
	if rdb != nil {
		viewQueue = queue.NewQueue(rdb, cfg.Queue.ViewQueue)
		states = oauth.NewStateStore(rdb)
	}
	searcher := search.NewMeili(cfg.Search.MeiliURL, cfg.Search.MeiliAPIKey, cfg.Search.Index)
	defer searcher.Close()
	notifier := email.NewService(&cfg.Email)
	githubOAuth := oauth.NewGithubOAuth(cfg.OAuth.Github.ClientID, cfg.OAuth.Github.ClientSecret, cfg.OAuth.Github.RedirectURI)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	adminRepo := repository.NewAdminRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	blogRepo := repository.NewBlogPostRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	viewRepo := repository.NewViewRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(adminRepo, states, githubOAuth, cfg)
	if err := authService.EnsureAdmin(); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	commentService := service.NewCommentService(commentRepo, notifier, cfg)
	blogService := service.NewBlogService(blogRepo, cache.New[[]*model.BlogPost](cfg.Cache.Size, cfg.Cache.TTL()), searcher)
	projectService := service.NewProjectService(projectRepo)
	resumeService := service.NewResumeService(resumeRepo)
	certService := service.NewCertificateService(certRepo)
	viewService := service.NewViewService(viewRepo, viewQueue, publisherFor(rdb, cfg), cfg)
	uploadService := service.NewUploadService(store, cfg)

	// 聚合更新推送到管理端
	if rdb != nil {
		go subscribeCounts(ctx, rdb, cfg, wsHub)
	}

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewCommentHandler(commentService),
		handler.NewBlogHandler(blogService),
		handler.NewProjectHandler(projectService),
		handler.NewResumeHandler(resumeService),
		handler.NewCertificateHandler(certService),
		handler.NewUploadHandler(uploadService),
		handler.NewViewHandler(viewService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		handler.NewHealthHandler(db, rdb),
		rdb,
		cfg,
	)
	if memStore != nil {
		router.MountStorage(memStore)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		log.Infof("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Infof("Received shutdown signal")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	log.Infof("Server stopped")
}

// publisherFor 同步聚合时由 server 自己发布更新
func publisherFor(rdb *redis.Client, cfg *config.Config) *pubsub.Publisher {
	if rdb == nil {
		return nil
	}
	return pubsub.NewPublisher(rdb, cfg.Queue.ViewTopic)
}

func subscribeCounts(ctx context.Context, rdb *redis.Client, cfg *config.Config, hub *ws.Hub) {
	sub := pubsub.NewSubscriber(rdb, cfg.Queue.ViewTopic)
	for {
		err := sub.Subscribe(ctx, func(msg *pubsub.CountMessage) {
			if err := hub.Broadcast(&ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Warnf("broadcast view count: %v", err)
			}
		})
		if ctx.Err() != nil {
			return
		}
		log.Warnf("view count subscription ended: %v, retrying", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
