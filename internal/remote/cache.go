package remote

import (
	"sync"
	"time"
)

type AssetCache struct {
	mu        sync.RWMutex
	assets    []Asset
	fetchedAt time.Time
	ttl       time.Duration
}

func NewAssetCache(ttl time.Duration) *AssetCache {
	return &AssetCache{ttl: ttl}
}

// Get returns nil when the cache is empty or stale.
func (c *AssetCache) Get() []Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.assets == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}

	result := make([]Asset, len(c.assets))
	copy(result, c.assets)
	return result
}

func (c *AssetCache) Set(assets []Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.assets = make([]Asset, len(assets))
	copy(c.assets, assets)
	c.fetchedAt = time.Now()
}

func (c *AssetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.assets = nil
}
