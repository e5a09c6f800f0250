package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/queue"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/service"
)

const popTimeout = 5 * time.Second

// Processor 消费访问事件队列并重算页面聚合
type Processor struct {
	viewService *service.ViewService
	queue       *queue.Queue
	cfg         *config.Config
}

func NewProcessor(viewService *service.ViewService, q *queue.Queue, cfg *config.Config) *Processor {
	return &Processor{
		viewService: viewService,
		queue:       q,
		cfg:         cfg,
	}
}

// Process 处理单个访问事件
func (p *Processor) Process(ctx context.Context, ev *queue.ViewEvent) error {
	if ev.PageType == "" {
		return fmt.Errorf("view event without page type")
	}
	key := repository.PageKey{PageType: ev.PageType, PageID: ev.PageID}
	count, err := p.viewService.Recompute(ctx, key)
	if err != nil {
		return fmt.Errorf("recompute %s/%s: %w", ev.PageType, ev.PageID, err)
	}
	log.Debugf("view aggregate %s/%s total=%d unique=%d", key.PageType, key.PageID, count.TotalViews, count.UniqueViews)
	return nil
}

// Run 启动 max_workers 个消费协程，阻塞到 ctx 取消
func (p *Processor) Run(ctx context.Context) {
	workers := p.cfg.Queue.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	log.Infof("view worker started, max workers: %d", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
	log.Infof("view worker shutdown complete")
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("worker %d shutting down", workerID)
			return
		default:
		}

		ev, err := p.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnf("worker %d: failed to pop view event: %v", workerID, err)
			// redis 不可用时退避，避免空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if ev == nil {
			continue
		}

		if err := p.Process(ctx, ev); err != nil {
			log.Errorf("worker %d: %v", workerID, err)
		}
	}
}
