// Package cache 进程内 TTL 缓存，用于公开列表接口
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New size<=0 时使用 128
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 128
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Set(key string, v V) {
	c.lru.Add(key, v)
}

// GetOrLoad 未命中时调用 load 并缓存结果，load 出错不缓存
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.lru.Add(key, v)
	return v, nil
}

func (c *Cache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
