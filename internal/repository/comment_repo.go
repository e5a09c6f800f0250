package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetInSubject 获取指定主题下的评论
func (r *CommentRepository) GetInSubject(id, subjectID string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ? AND subject_id = ?", id, subjectID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListApprovedBySubject 按创建时间升序获取主题下已审核的全部评论
func (r *CommentRepository) ListApprovedBySubject(subjectID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("subject_id = ? AND is_approved = ?", subjectID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// List 管理端分页列表，subjectID 为空时返回全部
func (r *CommentRepository) List(subjectID string, page, pageSize int) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{})
	if subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// DeleteCascade 删除评论及其所有后代，返回删除条数
func (r *CommentRepository) DeleteCascade(id string) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&model.Comment{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		result := tx.Where("id IN ?", ids).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// CountBySubject 获取主题下的评论数
func (r *CommentRepository) CountBySubject(subjectID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("subject_id = ?", subjectID).Count(&count).Error
	return count, err
}
