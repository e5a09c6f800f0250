package model

import (
	"time"
)

// 项目分类
const (
	CategoryUrbanEnvironmental = "Urban & Environmental Projects"
	CategoryCompliance         = "Environmental & Compliance Experience"
	CategoryCommunity          = "Community & Volunteer Leadership"
)

// 项目状态
const (
	ProjectCompleted  = "Completed"
	ProjectInProgress = "In Progress"
	ProjectPlanning   = "Planning"
	ProjectConcept    = "Concept"
)

var ProjectCategories = []string{CategoryUrbanEnvironmental, CategoryCompliance, CategoryCommunity}

var ProjectStatuses = []string{ProjectCompleted, ProjectInProgress, ProjectPlanning, ProjectConcept}

type BlogPost struct {
	UUIDModel
	Title       string      `gorm:"size:200;not null" json:"title"`
	Excerpt     string      `gorm:"type:text" json:"excerpt"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	ContentHTML string      `gorm:"type:text" json:"content_html"`
	Date        string      `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	ReadTime    string      `gorm:"size:20" json:"read_time"`
	Tags        StringArray `gorm:"type:text" json:"tags"`
	ImageURL    string      `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

type Project struct {
	UUIDModel
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	PDFURL      string    `gorm:"column:pdf_url;size:500" json:"pdf_url"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Location    string    `gorm:"size:200" json:"location"`
	Year        string    `gorm:"size:10" json:"year"`
	Status      string    `gorm:"size:20" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type Resume struct {
	UUIDModel
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileURL    string    `gorm:"size:500;not null" json:"file_url"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `gorm:"index" json:"uploaded_at"`
}

func (Resume) TableName() string {
	return "resume"
}

type Certificate struct {
	UUIDModel
	Title      string    `gorm:"size:200;not null" json:"title"`
	Issuer     string    `gorm:"size:200" json:"issuer"`
	DateIssued string    `gorm:"size:10;index" json:"date_issued"`
	FileName   string    `gorm:"size:255" json:"file_name"`
	FileURL    string    `gorm:"size:500" json:"file_url"`
	FileSize   int64     `json:"file_size"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}
