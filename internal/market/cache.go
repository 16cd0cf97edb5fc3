package market

import (
	"sync"
	"time"
)

const cacheShardCount = 16

// BarCache 以 code 为键缓存日线序列，避免短时间内重复拉取历史行情。
// Entries expire after a TTL; daily bars only change once per trading day so
// a few minutes of staleness is acceptable for trend analysis.
type BarCache struct {
	ttl      time.Duration
	maxCodes int
	shards   []barShard
}

type barShard struct {
	mu   sync.RWMutex
	data map[string]cachedBars
}

type cachedBars struct {
	bars      []Bar
	fetchedAt time.Time
}

func NewBarCache(ttl time.Duration, maxCodes int) *BarCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxCodes <= 0 {
		maxCodes = 128
	}
	c := &BarCache{ttl: ttl, maxCodes: maxCodes, shards: make([]barShard, cacheShardCount)}
	for i := range c.shards {
		c.shards[i].data = make(map[string]cachedBars)
	}
	return c
}

func (c *BarCache) shard(key string) *barShard {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return &c.shards[h%cacheShardCount]
}

// Get returns the cached series for key if present and fresh.
func (c *BarCache) Get(key string) ([]Bar, bool) {
	if c == nil {
		return nil, false
	}
	s := c.shard(key)
	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	out := make([]Bar, len(entry.bars))
	copy(out, entry.bars)
	return out, true
}

// Put stores a series under key, evicting expired entries when the shard is full.
func (c *BarCache) Put(key string, bars []Bar) {
	if c == nil || key == "" || len(bars) == 0 {
		return
	}
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) >= c.maxCodes/cacheShardCount+1 {
		for k, v := range s.data {
			if time.Since(v.fetchedAt) > c.ttl {
				delete(s.data, k)
			}
		}
	}
	s.data[key] = cachedBars{bars: cp, fetchedAt: time.Now()}
}
