package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/cache"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/markdown"
	"github.com/qs3c/portfolio_server/internal/pkg/search"
	"github.com/qs3c/portfolio_server/internal/repository"
)

const (
	blogListCacheKey = "blog_posts:list"
	blogSearchLimit  = 20
)

var (
	ErrBlogPostNotFound = apperr.NotFound("Blog post not found")
	ErrSearchQuery      = apperr.Validation("Search query is required")
)

type BlogService struct {
	postRepo *repository.BlogPostRepository
	cache    *cache.Cache[[]*model.BlogPost]
	search   *search.Meili
	now      func() time.Time
}

// NewBlogService searcher 可为 nil，此时检索走数据库
func NewBlogService(
	postRepo *repository.BlogPostRepository,
	listCache *cache.Cache[[]*model.BlogPost],
	searcher *search.Meili,
) *BlogService {
	return &BlogService{
		postRepo: postRepo,
		cache:    listCache,
		search:   searcher,
		now:      time.Now,
	}
}

// List 按日期倒序，结果缓存
func (s *BlogService) List() ([]*model.BlogPost, error) {
	posts, err := s.cache.GetOrLoad(blogListCacheKey, s.postRepo.List)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch blog posts", err)
	}
	return posts, nil
}

func (s *BlogService) Get(id string) (*model.BlogPost, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, apperr.Upstream("Failed to fetch blog post", err)
	}
	return post, nil
}

// Search 优先使用 Meilisearch，不可用或出错时回退到 LIKE 查询
func (s *BlogService) Search(q string) ([]*model.BlogPost, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrSearchQuery
	}

	if s.search.Healthy() {
		ids, err := s.search.Search(q, blogSearchLimit)
		if err == nil {
			posts, err := s.postRepo.GetByIDs(ids)
			if err != nil {
				return nil, apperr.Upstream("Failed to search blog posts", err)
			}
			return posts, nil
		}
		log.Warnf("blog search falling back to database: %v", err)
	}

	posts, err := s.postRepo.Search(q, blogSearchLimit)
	if err != nil {
		return nil, apperr.Upstream("Failed to search blog posts", err)
	}
	return posts, nil
}

func (s *BlogService) Create(req *dto.BlogPostRequest) (*model.BlogPost, error) {
	post := &model.BlogPost{}
	s.apply(post, req)
	if err := s.postRepo.Create(post); err != nil {
		return nil, apperr.Upstream("Failed to create blog post", err)
	}
	s.changed(post)
	return post, nil
}

func (s *BlogService) Update(id string, req *dto.BlogPostRequest) (*model.BlogPost, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.apply(post, req)
	if err := s.postRepo.Update(post); err != nil {
		return nil, apperr.Upstream("Failed to update blog post", err)
	}
	s.changed(post)
	return post, nil
}

func (s *BlogService) Delete(id string) error {
	n, err := s.postRepo.Delete(id)
	if err != nil {
		return apperr.Upstream("Failed to delete blog post", err)
	}
	if n == 0 {
		return ErrBlogPostNotFound
	}
	s.cache.Invalidate(blogListCacheKey)
	s.search.DeletePost(id)
	return nil
}

// apply 渲染正文并计算派生字段
func (s *BlogService) apply(post *model.BlogPost, req *dto.BlogPostRequest) {
	post.Title = strings.TrimSpace(req.Title)
	post.Excerpt = strings.TrimSpace(req.Excerpt)
	post.Content = req.Content
	post.ContentHTML = markdown.Render(req.Content)
	post.ReadTime = markdown.ReadTime(req.Content)
	post.Date = markdown.NormalizeDate(req.Date, s.now())
	post.ImageURL = strings.TrimSpace(req.ImageURL)

	tags := make(model.StringArray, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	post.Tags = tags
}

func (s *BlogService) changed(post *model.BlogPost) {
	s.cache.Invalidate(blogListCacheKey)
	s.search.IndexPost(search.PostRecord{
		ID:      post.ID,
		Title:   post.Title,
		Excerpt: post.Excerpt,
		Content: post.Content,
		Tags:    post.Tags,
		Date:    post.Date,
	})
}
