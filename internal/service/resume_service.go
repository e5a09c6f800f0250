package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/repository"
)

var ErrResumeNotFound = apperr.NotFound("Resume not found")

type ResumeService struct {
	resumeRepo *repository.ResumeRepository
}

func NewResumeService(resumeRepo *repository.ResumeRepository) *ResumeService {
	return &ResumeService{resumeRepo: resumeRepo}
}

// Current 当前有效简历
func (s *ResumeService) Current() (*model.Resume, error) {
	resume, err := s.resumeRepo.Latest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResumeNotFound
		}
		return nil, apperr.Upstream("Failed to fetch resume", err)
	}
	return resume, nil
}

// Replace 新简历替换所有旧记录
func (s *ResumeService) Replace(req *dto.ResumeRequest) (*model.Resume, error) {
	resume := &model.Resume{
		FileName:   strings.TrimSpace(req.FileName),
		FileURL:    strings.TrimSpace(req.FileURL),
		FileSize:   req.FileSize,
		UploadedAt: time.Now(),
	}
	if err := s.resumeRepo.Replace(resume); err != nil {
		return nil, apperr.Upstream("Failed to save resume", err)
	}
	return resume, nil
}

func (s *ResumeService) Delete() error {
	n, err := s.resumeRepo.DeleteAll()
	if err != nil {
		return apperr.Upstream("Failed to delete resume", err)
	}
	if n == 0 {
		return ErrResumeNotFound
	}
	return nil
}
