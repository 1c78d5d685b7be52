// 包 memo：进程内计算结果缓存；键为输入内容摘要，不按对象身份
package memo

import (
	"sync"

	"hospital-access/internal/metrics"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// 文档注释：显式构造的记忆化缓存
// 背景：由编排器在进程启动时创建并持有；无容量上限、永不过期，随进程结束丢弃。
// 约束：缓存值被多个调用方共享，调用方不得修改返回值；计算出错时不写入缓存。
type Cache struct {
	store *cache.Cache
	group singleflight.Group

	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func New() *Cache {
	// 清理间隔 <= 0 时 go-cache 不启动 janitor
	return &Cache{
		store:  cache.New(cache.NoExpiration, 0),
		hits:   make(map[string]int),
		misses: make(map[string]int),
	}
}

// Len：已缓存条目数
func (c *Cache) Len() int { return c.store.ItemCount() }

// Stats：某函数的命中/未命中次数
func (c *Cache) Stats(fn string) (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[fn], c.misses[fn]
}

func (c *Cache) hit(fn string) {
	c.mu.Lock()
	c.hits[fn]++
	c.mu.Unlock()
	metrics.MemoHitsTotal.WithLabelValues(fn).Inc()
}

func (c *Cache) miss(fn string) {
	c.mu.Lock()
	c.misses[fn]++
	c.mu.Unlock()
	metrics.MemoMissesTotal.WithLabelValues(fn).Inc()
}

// 文档注释：按 (fn, key) 取缓存，未命中则计算并写入
// 约束：同一键的并发调用只计算一次（singleflight）；compute 返回错误时不缓存，下次调用重新计算。
func GetOrCompute[T any](c *Cache, fn, key string, compute func() (T, error)) (T, error) {
	full := fn + ":" + key
	if v, ok := c.store.Get(full); ok {
		c.hit(fn)
		return v.(T), nil
	}
	v, err, _ := c.group.Do(full, func() (any, error) {
		if v, ok := c.store.Get(full); ok {
			c.hit(fn)
			return v, nil
		}
		c.miss(fn)
		r, err := compute()
		if err != nil {
			return nil, err
		}
		c.store.Set(full, r, cache.NoExpiration)
		return r, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
