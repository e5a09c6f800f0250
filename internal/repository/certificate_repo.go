package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.db.Create(cert).Error
}

func (r *CertificateRepository) GetByID(id string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.Where("id = ?", id).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// List 按颁发日期倒序
func (r *CertificateRepository) List() ([]*model.Certificate, error) {
	var certs []*model.Certificate
	err := r.db.Order("date_issued DESC").Order("created_at DESC").Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) Update(cert *model.Certificate) error {
	return r.db.Save(cert).Error
}

func (r *CertificateRepository) Delete(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.Certificate{})
	return result.RowsAffected, result.Error
}

func (r *CertificateRepository) FileURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&model.Certificate{}).Where("file_url <> ''").Pluck("file_url", &urls).Error
	return urls, err
}
