package model

import (
	"time"
)

type Comment struct {
	UUIDModel
	SubjectID   string    `gorm:"size:100;not null;index:idx_comments_subject_created,priority:1" json:"subject_id"`
	ParentID    *string   `gorm:"size:36;index" json:"parent_id"`
	AuthorName  string    `gorm:"size:100;not null" json:"author_name"`
	AuthorEmail string    `gorm:"size:255;not null" json:"author_email"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsApproved  bool      `gorm:"not null;index" json:"-"`
	CreatedAt   time.Time `gorm:"index:idx_comments_subject_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	Parent *Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}
