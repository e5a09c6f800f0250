package service

import (
	"errors"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/repository"
)

var (
	ErrProjectNotFound = apperr.NotFound("Project not found")
	ErrInvalidCategory = apperr.Validation("Invalid project category")
	ErrInvalidStatus   = apperr.Validation("Invalid project status")
)

type ProjectService struct {
	projectRepo *repository.ProjectRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// List category 为空时返回全部
func (s *ProjectService) List(category string) ([]*model.Project, error) {
	if category != "" && !slices.Contains(model.ProjectCategories, category) {
		return nil, ErrInvalidCategory
	}
	projects, err := s.projectRepo.List(category)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch projects", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(id string) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apperr.Upstream("Failed to fetch project", err)
	}
	return project, nil
}

func (s *ProjectService) Create(req *dto.ProjectRequest) (*model.Project, error) {
	if err := validateProject(req); err != nil {
		return nil, err
	}
	project := &model.Project{}
	applyProject(project, req)
	if err := s.projectRepo.Create(project); err != nil {
		return nil, apperr.Upstream("Failed to create project", err)
	}
	return project, nil
}

func (s *ProjectService) Update(id string, req *dto.ProjectRequest) (*model.Project, error) {
	if err := validateProject(req); err != nil {
		return nil, err
	}
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	applyProject(project, req)
	if err := s.projectRepo.Update(project); err != nil {
		return nil, apperr.Upstream("Failed to update project", err)
	}
	return project, nil
}

func (s *ProjectService) Delete(id string) error {
	n, err := s.projectRepo.Delete(id)
	if err != nil {
		return apperr.Upstream("Failed to delete project", err)
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func validateProject(req *dto.ProjectRequest) error {
	if !slices.Contains(model.ProjectCategories, req.Category) {
		return ErrInvalidCategory
	}
	if !slices.Contains(model.ProjectStatuses, req.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func applyProject(p *model.Project, req *dto.ProjectRequest) {
	p.Title = strings.TrimSpace(req.Title)
	p.Description = req.Description
	p.PDFURL = strings.TrimSpace(req.PDFURL)
	p.Category = req.Category
	p.Location = strings.TrimSpace(req.Location)
	p.Year = strings.TrimSpace(req.Year)
	p.Status = req.Status
}
