package model

import (
	"time"
)

// DefaultPageID 未指定页面时的默认值
const DefaultPageID = "main"

// PageView 原始访问事件
type PageView struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PageType  string    `gorm:"size:50;not null;index:idx_page_views_page,priority:1" json:"page_type"`
	PageID    string    `gorm:"size:100;not null;index:idx_page_views_page,priority:2" json:"page_id"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Referrer  string    `gorm:"size:500" json:"referrer"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (PageView) TableName() string {
	return "page_views"
}

// ViewCount 按页面聚合的访问量，由 page_views 推导
type ViewCount struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	PageType     string    `gorm:"size:50;not null;uniqueIndex:uk_view_counts_page,priority:1" json:"page_type"`
	PageID       string    `gorm:"size:100;not null;uniqueIndex:uk_view_counts_page,priority:2" json:"page_id"`
	TotalViews   int64     `gorm:"not null;default:0" json:"total_views"`
	UniqueViews  int64     `gorm:"not null;default:0" json:"unique_views"`
	LastUpdated  time.Time `json:"last_updated"`
	// 已清理原始事件折算的基数，聚合时叠加
	PrunedTotal  int64     `gorm:"not null;default:0" json:"-"`
	PrunedUnique int64     `gorm:"not null;default:0" json:"-"`
}

func (ViewCount) TableName() string {
	return "view_counts"
}
