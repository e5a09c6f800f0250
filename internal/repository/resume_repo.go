package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type ResumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Latest 获取最新上传的简历
func (r *ResumeRepository) Latest() (*model.Resume, error) {
	var resume model.Resume
	err := r.db.Order("uploaded_at DESC").First(&resume).Error
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

// Replace 在事务中清空旧简历并写入新简历
func (r *ResumeRepository) Replace(resume *model.Resume) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Resume{}).Error; err != nil {
			return err
		}
		return tx.Create(resume).Error
	})
}

// DeleteAll 删除全部简历
func (r *ResumeRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&model.Resume{})
	return result.RowsAffected, result.Error
}

func (r *ResumeRepository) FileURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&model.Resume{}).Where("file_url <> ''").Pluck("file_url", &urls).Error
	return urls, err
}
