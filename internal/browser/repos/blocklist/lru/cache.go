package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/beacon/internal/browser/domain"
	"github.com/haukened/beacon/internal/browser/repos/blocklist"
)

// verdictCache is an LRU-backed blocklist.VerdictCache with hit, miss and
// eviction counters.
type verdictCache struct {
	lru       *lru.Cache[string, domain.ClassificationVerdict]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses.
type disabledCache struct{}

// New creates a VerdictCache holding up to size verdicts. If size <= 0 a
// disabled cache is returned that always misses and tracks no metrics.
func New(size int) (blocklist.VerdictCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	vc := &verdictCache{}
	// NewWithEvict also observes Purge-induced evictions.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.ClassificationVerdict) {
		vc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	vc.lru = cache
	return vc, nil
}

// Get looks up a verdict by folded candidate.
func (c *verdictCache) Get(key string) (domain.ClassificationVerdict, bool) {
	if v, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	return domain.ClassificationVerdict{}, false
}

func (c *verdictCache) Put(key string, v domain.ClassificationVerdict) {
	c.lru.Add(key, v)
}

func (c *verdictCache) Len() int { return c.lru.Len() }

func (c *verdictCache) Purge() { c.lru.Purge() }

func (c *verdictCache) Stats() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

func (d *disabledCache) Get(string) (domain.ClassificationVerdict, bool) {
	return domain.ClassificationVerdict{}, false
}

func (d *disabledCache) Put(string, domain.ClassificationVerdict) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }

var _ blocklist.VerdictCache = (*verdictCache)(nil)
var _ blocklist.VerdictCache = (*disabledCache)(nil)
