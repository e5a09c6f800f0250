package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/portfolio_server/internal/model"
)

// PageKey 页面标识
type PageKey struct {
	PageType string `json:"pageType"`
	PageID   string `json:"pageId"`
}

type ViewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Insert 写入原始访问事件
func (r *ViewRepository) Insert(view *model.PageView) error {
	return r.db.Create(view).Error
}

// Aggregate 原始事件的总访问量与独立 IP 数，叠加已清理部分的基数
func (r *ViewRepository) Aggregate(key PageKey) (total, unique int64, err error) {
	var row struct {
		TotalCount  int64
		UniqueCount int64
	}
	err = r.db.Model(&model.PageView{}).
		Select("COUNT(*) AS total_count, COUNT(DISTINCT ip_address) AS unique_count").
		Where("page_type = ? AND page_id = ?", key.PageType, key.PageID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}

	var base []model.ViewCount
	err = r.db.Select("pruned_total", "pruned_unique").
		Where("page_type = ? AND page_id = ?", key.PageType, key.PageID).
		Limit(1).Find(&base).Error
	if err != nil {
		return 0, 0, err
	}
	total, unique = row.TotalCount, row.UniqueCount
	if len(base) > 0 {
		total += base[0].PrunedTotal
		unique += base[0].PrunedUnique
	}
	return total, unique, nil
}

// SaveCount 写入聚合结果，计数只增不减
func (r *ViewRepository) SaveCount(key PageKey, total, unique int64) (*model.ViewCount, error) {
	now := time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		seed := &model.ViewCount{PageType: key.PageType, PageID: key.PageID, LastUpdated: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}

		scope := func() *gorm.DB {
			return tx.Model(&model.ViewCount{}).Where("page_type = ? AND page_id = ?", key.PageType, key.PageID)
		}
		if err := scope().Where("total_views < ?", total).Update("total_views", total).Error; err != nil {
			return err
		}
		if err := scope().Where("unique_views < ?", unique).Update("unique_views", unique).Error; err != nil {
			return err
		}
		return scope().Update("last_updated", now).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetCount(key)
}

// GetCount 获取单个页面的聚合
func (r *ViewRepository) GetCount(key PageKey) (*model.ViewCount, error) {
	var count model.ViewCount
	err := r.db.Where("page_type = ? AND page_id = ?", key.PageType, key.PageID).First(&count).Error
	if err != nil {
		return nil, err
	}
	return &count, nil
}

// ListCounts 按条件查询聚合，参数为空表示不过滤
func (r *ViewRepository) ListCounts(pageType, pageID string) ([]*model.ViewCount, error) {
	counts := []*model.ViewCount{}
	query := r.db.Model(&model.ViewCount{})
	if pageType != "" {
		query = query.Where("page_type = ?", pageType)
	}
	if pageID != "" {
		query = query.Where("page_id = ?", pageID)
	}
	err := query.Order("page_type ASC").Order("page_id ASC").Find(&counts).Error
	return counts, err
}

// DistinctPages 返回所有有原始事件的页面
func (r *ViewRepository) DistinctPages() ([]PageKey, error) {
	var keys []PageKey
	err := r.db.Model(&model.PageView{}).
		Select("DISTINCT page_type, page_id").
		Scan(&keys).Error
	return keys, err
}

// PruneBefore 删除早于指定时间的原始事件，删除前把数量折入各页面的基数。
// 独立 IP 只折入在保留事件中不再出现的部分
func (r *ViewRepository) PruneBefore(t time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pages []struct {
			PageType string
			PageID   string
			Total    int64
		}
		err := tx.Model(&model.PageView{}).
			Select("page_type, page_id, COUNT(*) AS total").
			Where("created_at < ?", t).
			Group("page_type, page_id").
			Scan(&pages).Error
		if err != nil {
			return err
		}

		now := time.Now()
		for _, p := range pages {
			kept := tx.Model(&model.PageView{}).
				Select("ip_address").
				Where("page_type = ? AND page_id = ? AND created_at >= ?", p.PageType, p.PageID, t)
			var unique int64
			err := tx.Model(&model.PageView{}).
				Select("COUNT(DISTINCT ip_address)").
				Where("page_type = ? AND page_id = ? AND created_at < ?", p.PageType, p.PageID, t).
				Where("ip_address NOT IN (?)", kept).
				Scan(&unique).Error
			if err != nil {
				return err
			}

			seed := &model.ViewCount{PageType: p.PageType, PageID: p.PageID, LastUpdated: now}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
				return err
			}
			err = tx.Model(&model.ViewCount{}).
				Where("page_type = ? AND page_id = ?", p.PageType, p.PageID).
				Updates(map[string]interface{}{
					"pruned_total":  gorm.Expr("pruned_total + ?", p.Total),
					"pruned_unique": gorm.Expr("pruned_unique + ?", unique),
				}).Error
			if err != nil {
				return err
			}
		}

		result := tx.Where("created_at < ?", t).Delete(&model.PageView{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// CountBefore 统计早于指定时间的原始事件数
func (r *ViewRepository) CountBefore(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.PageView{}).Where("created_at < ?", t).Count(&count).Error
	return count, err
}

// DeletePage 删除页面的事件与聚合
func (r *ViewRepository) DeletePage(key PageKey) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_type = ? AND page_id = ?", key.PageType, key.PageID).
			Delete(&model.PageView{}).Error; err != nil {
			return err
		}
		return tx.Where("page_type = ? AND page_id = ?", key.PageType, key.PageID).
			Delete(&model.ViewCount{}).Error
	})
}
