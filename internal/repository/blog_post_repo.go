package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type BlogPostRepository struct {
	db *gorm.DB
}

func NewBlogPostRepository(db *gorm.DB) *BlogPostRepository {
	return &BlogPostRepository{db: db}
}

func (r *BlogPostRepository) Create(post *model.BlogPost) error {
	return r.db.Create(post).Error
}

func (r *BlogPostRepository) GetByID(id string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDs 按给定 ID 顺序返回文章，缺失的跳过
func (r *BlogPostRepository) GetByIDs(ids []string) ([]*model.BlogPost, error) {
	if len(ids) == 0 {
		return []*model.BlogPost{}, nil
	}
	var posts []*model.BlogPost
	if err := r.db.Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*model.BlogPost, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.BlogPost, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// List 按日期倒序
func (r *BlogPostRepository) List() ([]*model.BlogPost, error) {
	var posts []*model.BlogPost
	err := r.db.Order("date DESC").Order("created_at DESC").Find(&posts).Error
	return posts, err
}

// Search 标题、摘要、正文模糊匹配
func (r *BlogPostRepository) Search(q string, limit int) ([]*model.BlogPost, error) {
	var posts []*model.BlogPost
	like := "%" + strings.ToLower(q) + "%"
	err := r.db.
		Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", like, like, like).
		Order("date DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *BlogPostRepository) Update(post *model.BlogPost) error {
	return r.db.Save(post).Error
}

// Delete 删除文章，返回影响行数
func (r *BlogPostRepository) Delete(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.BlogPost{})
	return result.RowsAffected, result.Error
}

// FileURLs 返回所有引用的文件地址
func (r *BlogPostRepository) FileURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&model.BlogPost{}).Where("image_url <> ''").Pluck("image_url", &urls).Error
	return urls, err
}
