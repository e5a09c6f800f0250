package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(admin *model.Admin) error {
	return r.db.Create(admin).Error
}

func (r *AdminRepository) GetByID(id int64) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("id = ?", id).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByUsername(username string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByGithubID(githubID string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("github_id = ?", githubID).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Update(admin *model.Admin) error {
	return r.db.Save(admin).Error
}

// TouchLogin 记录最近登录时间
func (r *AdminRepository) TouchLogin(id int64) error {
	return r.db.Model(&model.Admin{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error
}

// UpsertPassword 按用户名写入密码哈希，不存在则创建
func (r *AdminRepository) UpsertPassword(username, passwordHash string) (*model.Admin, error) {
	admin, err := r.GetByUsername(username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if admin == nil {
		admin = &model.Admin{Username: username, PasswordHash: &passwordHash}
		return admin, r.Create(admin)
	}
	admin.PasswordHash = &passwordHash
	return admin, r.Update(admin)
}

func (r *AdminRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Admin{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
