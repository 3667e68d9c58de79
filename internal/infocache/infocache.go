// Package infocache memoizes file metadata used for status lines and the
// static preview fallback.
package infocache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/logging"
)

const (
	DefaultTTL             = 2 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// StatFunc loads metadata for a path.
type StatFunc func(path string) (fs.Info, error)

// Cache is a read-through cache of fs.Info keyed by fs.Item.Key.
type Cache struct {
	cache *gocache.Cache
	stat  StatFunc
	ttl   time.Duration
}

// New creates a cache. Non-positive durations fall back to the defaults.
func New(ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Cache{
		cache: gocache.New(ttl, cleanup),
		stat:  fs.Stat,
		ttl:   ttl,
	}
}

// WithStat replaces the loader. Used by tests.
func (c *Cache) WithStat(fn StatFunc) *Cache {
	c.stat = fn
	return c
}

// Info returns metadata for item, loading it on a miss. Errors are not cached.
func (c *Cache) Info(item fs.Item) (fs.Info, error) {
	key := item.Key()
	if value, found := c.cache.Get(key); found {
		if info, ok := value.(fs.Info); ok {
			return info, nil
		}
		logging.Error("infocache: unexpected value type", zap.String("key", key))
		c.cache.Delete(key)
	}

	info, err := c.stat(item.Path())
	if err != nil {
		return fs.Info{}, err
	}
	c.cache.Set(key, info, c.ttl)
	return info, nil
}

// Invalidate drops cached entries for the given items.
func (c *Cache) Invalidate(items ...fs.Item) {
	for _, item := range items {
		c.cache.Delete(item.Key())
	}
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// Len reports the number of cached entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
