package model

import (
	"time"
)

type Admin struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	GithubID     *string    `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	GithubLogin  string     `gorm:"size:100" json:"github_login,omitempty"`
	AvatarURL    string     `gorm:"size:500" json:"avatar_url"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}
