package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/database"
	"github.com/qs3c/portfolio_server/internal/pkg/cron"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/pubsub"
	"github.com/qs3c/portfolio_server/internal/pkg/queue"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/service"
	"github.com/qs3c/portfolio_server/internal/worker"
)

const cronJobTimeout = 10 * time.Minute

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
	log.Infof("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer rdb.Close()
	log.Infof("Redis connected")

	// 初始化 Queue 和 Pub/Sub
	viewQueue := queue.NewQueue(rdb, cfg.Queue.ViewQueue)
	publisher := pubsub.NewPublisher(rdb, cfg.Queue.ViewTopic)

	viewService := service.NewViewService(repository.NewViewRepository(db), viewQueue, publisher, cfg)
	processor := worker.NewProcessor(viewService, viewQueue, cfg)

	// 定时任务：全量对账与过期事件清理
	scheduler := cron.NewService(cronJobTimeout)
	reconcile := func(ctx context.Context) error {
		n, err := viewService.ReconcileAll(ctx)
		if err != nil {
			return err
		}
		log.Infof("reconciled %d view aggregates", n)
		return nil
	}
	if err := scheduler.Add("reconcile_views", cfg.Views.ReconcileSpec, reconcile); err != nil {
		log.Fatalf("Invalid views.reconcile_spec %q: %v", cfg.Views.ReconcileSpec, err)
	}
	if cfg.Views.RetentionDays > 0 {
		prune := func(ctx context.Context) error {
			n, err := viewService.Prune(cfg.Views.RetentionDays, false)
			if err != nil {
				return err
			}
			log.Infof("pruned %d page views older than %d days", n, cfg.Views.RetentionDays)
			return nil
		}
		if err := scheduler.Add("prune_views", cfg.Views.PruneSpec, prune); err != nil {
			log.Fatalf("Invalid views.prune_spec %q: %v", cfg.Views.PruneSpec, err)
		}
	}
	// 启动时先对账一次，补齐 worker 停机期间的积压
	scheduler.RunNow("reconcile_views", reconcile)
	scheduler.Start()

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Infof("Received shutdown signal")
		cancel()
	}()

	processor.Run(ctx)
	scheduler.Stop()
}
