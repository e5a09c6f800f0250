package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/metrics"
	"github.com/qs3c/portfolio_server/internal/pkg/pubsub"
	"github.com/qs3c/portfolio_server/internal/pkg/queue"
	"github.com/qs3c/portfolio_server/internal/repository"
)

const (
	defaultIP        = "127.0.0.1"
	selfTestPageType = "__selftest"
)

var ErrPageTypeRequired = apperr.Validation("Page type is required")

type ViewService struct {
	viewRepo  *repository.ViewRepository
	queue     *queue.Queue
	publisher *pubsub.Publisher
	cfg       *config.Config
}

// NewViewService queue 与 publisher 可为 nil，此时同步聚合且不广播
func NewViewService(
	viewRepo *repository.ViewRepository,
	q *queue.Queue,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *ViewService {
	return &ViewService{
		viewRepo:  viewRepo,
		queue:     q,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ClientIP 依次取 X-Forwarded-For 第一项、X-Real-IP，均缺失时为 127.0.0.1
func ClientIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(realIP); ip != "" {
		return ip
	}
	return defaultIP
}

// Record 写入原始事件并触发聚合
func (s *ViewService) Record(ctx context.Context, req *dto.RecordViewRequest, meta dto.ViewMeta) (*model.PageView, error) {
	pageType := strings.TrimSpace(req.PageType)
	if pageType == "" {
		return nil, ErrPageTypeRequired
	}
	pageID := strings.TrimSpace(req.PageID)
	if pageID == "" {
		pageID = model.DefaultPageID
	}

	view := &model.PageView{
		PageType:  pageType,
		PageID:    pageID,
		IPAddress: meta.IPAddress,
		UserAgent: truncate(meta.UserAgent, 500),
		Referrer:  truncate(meta.Referrer, 500),
		CreatedAt: time.Now(),
	}
	if err := s.viewRepo.Insert(view); err != nil {
		return nil, apperr.Upstream("Failed to track view", err)
	}

	if s.enqueue(ctx, view) {
		metrics.ViewEvents.WithLabelValues("async").Inc()
		return view, nil
	}

	// 队列不可用时在请求内同步聚合
	metrics.ViewEvents.WithLabelValues("sync").Inc()
	if _, err := s.Recompute(ctx, repository.PageKey{PageType: pageType, PageID: pageID}); err != nil {
		log.Errorf("sync view aggregate for %s/%s failed: %v", pageType, pageID, err)
	}
	return view, nil
}

func (s *ViewService) enqueue(ctx context.Context, view *model.PageView) bool {
	if s.queue == nil || !s.cfg.Queue.AsyncViews {
		return false
	}
	err := s.queue.Push(ctx, &queue.ViewEvent{
		PageType:  view.PageType,
		PageID:    view.PageID,
		IPAddress: view.IPAddress,
		UserAgent: view.UserAgent,
		Referrer:  view.Referrer,
		CreatedAt: view.CreatedAt,
	})
	if err != nil {
		log.Warnf("view queue push failed, aggregating inline: %v", err)
		return false
	}
	return true
}

// Counts 查询聚合，参数为空表示不过滤
func (s *ViewService) Counts(pageType, pageID string) ([]*model.ViewCount, error) {
	counts, err := s.viewRepo.ListCounts(strings.TrimSpace(pageType), strings.TrimSpace(pageID))
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch view counts", err)
	}
	return counts, nil
}

// Recompute 基于原始事件重算聚合并广播，计数只增不减
func (s *ViewService) Recompute(ctx context.Context, key repository.PageKey) (*model.ViewCount, error) {
	total, unique, err := s.viewRepo.Aggregate(key)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s/%s: %w", key.PageType, key.PageID, err)
	}
	count, err := s.viewRepo.SaveCount(key, total, unique)
	if err != nil {
		return nil, fmt.Errorf("save count %s/%s: %w", key.PageType, key.PageID, err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishCount(ctx, &pubsub.CountMessage{
			PageType:    count.PageType,
			PageID:      count.PageID,
			TotalViews:  count.TotalViews,
			UniqueViews: count.UniqueViews,
			LastUpdated: count.LastUpdated,
		})
		if err != nil {
			log.Warnf("publish view count %s/%s: %v", key.PageType, key.PageID, err)
		}
	}
	return count, nil
}

// ReconcileAll 重算所有存在原始事件的页面，返回处理数
func (s *ViewService) ReconcileAll(ctx context.Context) (int, error) {
	keys, err := s.viewRepo.DistinctPages()
	if err != nil {
		return 0, fmt.Errorf("list pages: %w", err)
	}
	done := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.Recompute(ctx, key); err != nil {
			log.Errorf("reconcile %s/%s: %v", key.PageType, key.PageID, err)
			continue
		}
		done++
	}
	return done, nil
}

// Prune 删除超出保留期的原始事件，retentionDays<=0 不做处理
func (s *ViewService) Prune(retentionDays int, dryRun bool) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if dryRun {
		return s.viewRepo.CountBefore(cutoff)
	}
	return s.viewRepo.PruneBefore(cutoff)
}

// SelfTest 使用临时页面走一遍写入与聚合，结束后清理
func (s *ViewService) SelfTest() *dto.SelfTestResult {
	result := &dto.SelfTestResult{Tests: []dto.SelfTestStep{}}
	step := func(name string, err error) bool {
		st := dto.SelfTestStep{Name: name, Success: err == nil}
		if err != nil {
			st.Error = err.Error()
		}
		result.Tests = append(result.Tests, st)
		return err == nil
	}

	key := repository.PageKey{PageType: selfTestPageType, PageID: uuid.NewString()}
	defer func() {
		if err := s.viewRepo.DeletePage(key); err != nil {
			log.Warnf("selftest cleanup failed: %v", err)
		}
	}()

	_, err := s.viewRepo.ListCounts(selfTestPageType, "")
	if !step("view_counts table reachable", err) {
		return result
	}
	_, err = s.viewRepo.CountBefore(time.Now())
	if !step("page_views table reachable", err) {
		return result
	}

	err = s.viewRepo.Insert(&model.PageView{
		PageType:  key.PageType,
		PageID:    key.PageID,
		IPAddress: defaultIP,
		UserAgent: "selftest",
		CreatedAt: time.Now(),
	})
	if !step("insert page view", err) {
		return result
	}

	total, unique, err := s.viewRepo.Aggregate(key)
	if err == nil && (total != 1 || unique != 1) {
		err = fmt.Errorf("expected 1/1, got %d/%d", total, unique)
	}
	if !step("aggregate page views", err) {
		return result
	}

	_, err = s.viewRepo.SaveCount(key, total, unique)
	if !step("upsert view count", err) {
		return result
	}

	count, err := s.viewRepo.GetCount(key)
	if err == nil && count.TotalViews != 1 {
		err = fmt.Errorf("expected stored total 1, got %d", count.TotalViews)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = errors.New("view count row missing after upsert")
	}
	if !step("read view count", err) {
		return result
	}

	result.Success = true
	return result
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
