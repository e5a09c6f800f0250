package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) GetByID(id string) (*model.Project, error) {
	var project model.Project
	err := r.db.Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List 按创建时间倒序，category 为空时返回全部
func (r *ProjectRepository) List(category string) ([]*model.Project, error) {
	var projects []*model.Project
	query := r.db.Model(&model.Project{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(project *model.Project) error {
	return r.db.Save(project).Error
}

func (r *ProjectRepository) Delete(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.Project{})
	return result.RowsAffected, result.Error
}

func (r *ProjectRepository) FileURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&model.Project{}).Where("pdf_url <> ''").Pluck("pdf_url", &urls).Error
	return urls, err
}
