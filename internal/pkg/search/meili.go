// Package search 博客全文检索，Meilisearch 不可用时由调用方回退到数据库查询
package search

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"github.com/qs3c/portfolio_server/internal/pkg/log"
)

// PostRecord 索引中的博客文档
type PostRecord struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date"`
}

// Meili implements blog search via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	index   string
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili url 为空时返回 nil，调用方按未配置处理
func NewMeili(url, apiKey, index string) *Meili {
	if url == "" {
		return nil
	}
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		index:  index,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Warnf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        m.index,
		PrimaryKey: "id",
	}); err != nil {
		log.Debugf("search: create index %s (may already exist): %v", m.index, err)
	}

	searchable := []string{"title", "excerpt", "content", "tags"}
	if _, err := m.client.Index(m.index).UpdateSearchableAttributes(&searchable); err != nil {
		log.Warnf("search: update searchable attrs for %s: %v", m.index, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Infof("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	if m == nil {
		return
	}
	close(m.done)
}

// Healthy nil 视为不可用
func (m *Meili) Healthy() bool {
	return m != nil && m.healthy.Load()
}

// Search 返回按相关度排序的文章 ID
func (m *Meili) Search(q string, limit int) ([]string, error) {
	if !m.Healthy() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{{
			IndexUID: m.index,
			Query:    q,
			Limit:    int64(limit),
		}},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	ids := []string{}
	for _, sr := range resp.Results {
		for _, hit := range sr.Hits {
			raw, ok := hit["id"]
			if !ok {
				continue
			}
			var id string
			if err := json.Unmarshal(raw, &id); err == nil && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// IndexPost 写入或更新文档，失败只记录日志
func (m *Meili) IndexPost(doc PostRecord) {
	if !m.Healthy() {
		return
	}
	go func() {
		if _, err := m.client.Index(m.index).AddDocuments([]PostRecord{doc}, nil); err != nil {
			log.Warnf("search: index post %s: %v", doc.ID, err)
		}
	}()
}

// DeletePost 从索引移除文档
func (m *Meili) DeletePost(id string) {
	if !m.Healthy() {
		return
	}
	go func() {
		if _, err := m.client.Index(m.index).DeleteDocument(id, nil); err != nil {
			log.Warnf("search: delete post %s: %v", id, err)
		}
	}()
}
