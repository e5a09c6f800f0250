package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/database"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/storage"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/service"
	"github.com/qs3c/portfolio_server/internal/worker"
)

type options struct {
	configPath    string
	dryRun        bool
	retentionDays int
	orphans       bool
	minAge        time.Duration
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune old page views and unreferenced uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	cmd.Flags().StringVar(&opts.configPath, "config", defaultConfig, "config file path")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", true, "report what would be deleted without deleting")
	cmd.Flags().IntVar(&opts.retentionDays, "retention-days", -1, "delete page views older than N days (default: views.retention_days)")
	cmd.Flags().BoolVar(&opts.orphans, "orphans", false, "also remove storage objects no record references")
	cmd.Flags().DurationVar(&opts.minAge, "min-age", worker.DefaultOrphanMinAge, "only treat objects older than this as orphans")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Log.Level)
	log.Infof("Starting cleanup, dry-run=%v", opts.dryRun)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return err
	}

	// 1. 清理过期访问事件
	retention := opts.retentionDays
	if retention < 0 {
		retention = cfg.Views.RetentionDays
	}
	viewService := service.NewViewService(repository.NewViewRepository(db), nil, nil, cfg)
	n, err := viewService.Prune(retention, opts.dryRun)
	if err != nil {
		return err
	}
	switch {
	case retention <= 0:
		log.Infof("Page view retention disabled, nothing pruned")
	case opts.dryRun:
		log.Infof("[dry-run] %d page views older than %d days would be deleted", n, retention)
	default:
		log.Infof("Deleted %d page views older than %d days", n, retention)
	}

	if !opts.orphans {
		return nil
	}

	// 2. 清理未被引用的存储对象
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	janitor := worker.NewJanitor(store, cfg.Storage.Prefix,
		repository.NewBlogPostRepository(db),
		repository.NewProjectRepository(db),
		repository.NewResumeRepository(db),
		repository.NewCertificateRepository(db),
	).WithMinAge(opts.minAge)
	count, size, err := janitor.Sweep(ctx, opts.dryRun)
	if err != nil {
		return err
	}
	if opts.dryRun {
		log.Infof("[dry-run] %d orphaned objects (%.2f MB) would be deleted", count, float64(size)/1024/1024)
	} else {
		log.Infof("Deleted %d orphaned objects (%.2f MB)", count, float64(size)/1024/1024)
	}
	return nil
}
