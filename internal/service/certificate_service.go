package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/markdown"
	"github.com/qs3c/portfolio_server/internal/repository"
)

var ErrCertificateNotFound = apperr.NotFound("Certificate not found")

type CertificateService struct {
	certRepo *repository.CertificateRepository
}

func NewCertificateService(certRepo *repository.CertificateRepository) *CertificateService {
	return &CertificateService{certRepo: certRepo}
}

func (s *CertificateService) List() ([]*model.Certificate, error) {
	certs, err := s.certRepo.List()
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch certificates", err)
	}
	return certs, nil
}

func (s *CertificateService) Get(id string) (*model.Certificate, error) {
	cert, err := s.certRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, apperr.Upstream("Failed to fetch certificate", err)
	}
	return cert, nil
}

func (s *CertificateService) Create(req *dto.CertificateRequest) (*model.Certificate, error) {
	cert := &model.Certificate{}
	applyCertificate(cert, req)
	if err := s.certRepo.Create(cert); err != nil {
		return nil, apperr.Upstream("Failed to create certificate", err)
	}
	return cert, nil
}

func (s *CertificateService) Update(id string, req *dto.CertificateRequest) (*model.Certificate, error) {
	cert, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	applyCertificate(cert, req)
	if err := s.certRepo.Update(cert); err != nil {
		return nil, apperr.Upstream("Failed to update certificate", err)
	}
	return cert, nil
}

func (s *CertificateService) Delete(id string) error {
	n, err := s.certRepo.Delete(id)
	if err != nil {
		return apperr.Upstream("Failed to delete certificate", err)
	}
	if n == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

func applyCertificate(c *model.Certificate, req *dto.CertificateRequest) {
	c.Title = strings.TrimSpace(req.Title)
	c.Issuer = strings.TrimSpace(req.Issuer)
	c.DateIssued = ""
	if req.DateIssued != "" {
		c.DateIssued = markdown.NormalizeDate(req.DateIssued, time.Now())
	}
	c.FileName = strings.TrimSpace(req.FileName)
	c.FileURL = strings.TrimSpace(req.FileURL)
	c.FileSize = req.FileSize
}
