// Package cron 定时任务调度
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/qs3c/portfolio_server/internal/pkg/log"
)

// Job 定时任务，返回的错误只记录日志
type Job func(ctx context.Context) error

type Service struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewService timeout 为单次任务的最长执行时间
func NewService(timeout time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		// 上一次未结束时跳过本次，避免同一任务并发
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Add 注册任务，spec 支持标准 5 段表达式与 @hourly 等描述符
func (s *Service) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	return err
}

// RunNow 立即同步执行一次任务
func (s *Service) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Service) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		log.Errorf("cron job %s failed after %s: %v", name, time.Since(start), err)
		return
	}
	log.Debugf("cron job %s done in %s", name, time.Since(start))
}

// Start 启动定时任务
func (s *Service) Start() {
	s.cron.Start()
	log.Infof("cron service started with %d jobs", len(s.cron.Entries()))
}

// Stop 停止调度并等待运行中的任务结束
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	log.Infof("cron service stopped")
}
