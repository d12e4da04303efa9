package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/repos/verdicts"
)

// decisionCache is an LRU-backed implementation of verdicts.DecisionCache.
// It tracks hits, misses, and evictions (including Purge-induced ones).
type decisionCache struct {
	lru       *lru.Cache[string, domain.Outcome]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses.
type disabledCache struct{}

// New creates a DecisionCache with the given capacity. If size <= 0 a
// disabled no-op cache is returned.
func New(size int) (verdicts.DecisionCache, error) {
	if size <= 0 {
		return disabledCache{}, nil
	}
	dc := &decisionCache{}
	cache, err := lru.NewWithEvict(size, func(string, domain.Outcome) {
		dc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = cache
	return dc, nil
}

func (c *decisionCache) Get(key string) (domain.Outcome, bool) {
	if val, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return val, true
	}
	c.misses.Add(1)
	return domain.Outcome{}, false
}

func (c *decisionCache) Put(key string, o domain.Outcome) { c.lru.Add(key, o) }

func (c *decisionCache) Len() int { return c.lru.Len() }

func (c *decisionCache) Purge() { c.lru.Purge() }

func (c *decisionCache) Stats() (hits, misses, evictions uint64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}

func (disabledCache) Get(string) (domain.Outcome, bool) { return domain.Outcome{}, false }
func (disabledCache) Put(string, domain.Outcome)         {}
func (disabledCache) Len() int                           { return 0 }
func (disabledCache) Purge()                             {}
func (disabledCache) Stats() (uint64, uint64, uint64)    { return 0, 0, 0 }

var (
	_ verdicts.DecisionCache = (*decisionCache)(nil)
	_ verdicts.DecisionCache = disabledCache{}
)
