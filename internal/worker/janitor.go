package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/storage"
)

// URLSource 提供业务数据中引用的文件地址
type URLSource interface {
	FileURLs() ([]string, error)
}

// DefaultOrphanMinAge 上传后尚未保存记录的文件在此期间内不视为孤儿
const DefaultOrphanMinAge = 24 * time.Hour

// Janitor 查找并清理存储中不再被任何记录引用的对象
type Janitor struct {
	store   storage.Storage
	prefix  string
	sources []URLSource
	minAge  time.Duration
	now     func() time.Time
}

func NewJanitor(store storage.Storage, prefix string, sources ...URLSource) *Janitor {
	return &Janitor{
		store:   store,
		prefix:  prefix,
		sources: sources,
		minAge:  DefaultOrphanMinAge,
		now:     time.Now,
	}
}

// WithMinAge 设置宽限期，0 表示不设宽限
func (j *Janitor) WithMinAge(d time.Duration) *Janitor {
	if d < 0 {
		d = 0
	}
	j.minAge = d
	return j
}

// Orphans 列出前缀下未被引用且超过宽限期的对象
func (j *Janitor) Orphans(ctx context.Context) ([]storage.ObjectInfo, error) {
	referenced := make(map[string]struct{})
	for _, src := range j.sources {
		urls, err := src.FileURLs()
		if err != nil {
			return nil, fmt.Errorf("load referenced files: %w", err)
		}
		for _, u := range urls {
			if key, ok := storage.KeyFromURL(j.store, u); ok {
				referenced[key] = struct{}{}
			}
		}
	}

	objects, err := j.store.List(ctx, j.prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	cutoff := j.now().Add(-j.minAge)
	var orphans []storage.ObjectInfo
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if j.minAge > 0 && obj.LastModified.After(cutoff) {
			log.Debugf("skip recent object %s (modified %s)", obj.Key, obj.LastModified.Format(time.RFC3339))
			continue
		}
		orphans = append(orphans, obj)
	}
	return orphans, nil
}

// Sweep 删除孤儿对象，dryRun 时只统计。返回对象数与总字节数
func (j *Janitor) Sweep(ctx context.Context, dryRun bool) (int, int64, error) {
	orphans, err := j.Orphans(ctx)
	if err != nil {
		return 0, 0, err
	}

	var count int
	var size int64
	for _, obj := range orphans {
		if dryRun {
			log.Infof("[dry-run] would delete %s (%d bytes)", obj.Key, obj.Size)
		} else if err := j.store.Delete(ctx, obj.Key); err != nil {
			log.Warnf("failed to delete %s: %v", obj.Key, err)
			continue
		} else {
			log.Infof("deleted %s (%d bytes)", obj.Key, obj.Size)
		}
		count++
		size += obj.Size
	}
	return count, size, nil
}
