package verdicts

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/haukened/guardia/internal/guard/domain"
)

// repository implements Repository by composing a Bloom filter over number
// rules, a DecisionCache and the pure classifier. Reads take a read lock on
// the current snapshot; Reload swaps everything under the write lock.
type repository struct {
	mu      sync.RWMutex
	snap    Snapshot
	bloom   BloomFilter
	content int

	cache   DecisionCache
	factory BloomFactory
	fpRate  float64

	prefiltered atomic.Uint64
	reloads     atomic.Uint64
}

// NewRepository constructs a Repository with an empty, ACTIVE snapshot.
// fpRate is the target false-positive rate for the number Bloom filter.
func NewRepository(cache DecisionCache, factory BloomFactory, fpRate float64) Repository {
	r := &repository{cache: cache, factory: factory, fpRate: fpRate}
	r.Reload(Snapshot{Status: domain.StatusActive})
	return r
}

// Decide returns the outcome for ev against the current snapshot.
func (r *repository) Decide(ev domain.Event) domain.Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.snap.Status == domain.StatusPaused {
		return domain.PassOutcome()
	}

	number := domain.NormalizeNumber(ev.Number)

	// 1) checkBloom: a number that is on no list can only be caught by a
	// content rule, so calls and empty bodies pass right away.
	if !r.bloom.MightContain([]byte(number)) && (!ev.HasContent() || r.content == 0) {
		r.prefiltered.Add(1)
		return domain.PassOutcome()
	}

	// 2) checkCache
	key := cacheKey(ev, number)
	if o, ok := r.cache.Get(key); ok {
		return o
	}

	// 3) classify and remember
	o := domain.Classify(ev, r.snap.Rules, r.snap.Status, r.snap.AutoReply)
	r.cache.Put(key, o)
	return o
}

// Reload installs a new snapshot, rebuilds the Bloom filter and purges the
// decision cache. The rule slice is copied.
func (r *repository) Reload(s Snapshot) {
	s.Rules = append([]domain.Rule(nil), s.Rules...)

	var numbers uint64
	content := 0
	for _, ru := range s.Rules {
		switch {
		case ru.Type.IsNumberRule():
			numbers++
		case ru.Type == domain.RuleContent:
			content++
		}
	}
	bf := r.factory.New(numbers, r.fpRate)
	for _, ru := range s.Rules {
		if ru.Type.IsNumberRule() {
			bf.Add([]byte(domain.NormalizeNumber(ru.Value)))
		}
	}

	r.mu.Lock()
	r.snap = s
	r.bloom = bf
	r.content = content
	r.cache.Purge()
	r.mu.Unlock()
	r.reloads.Add(1)
}

// Stats returns a best-effort view of the counters.
func (r *repository) Stats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepoStats{
		Hits:         hits,
		Misses:       misses,
		Evictions:    evictions,
		Cached:       r.cache.Len(),
		Prefiltered:  r.prefiltered.Load(),
		NumberRules:  len(r.snap.Rules) - r.content,
		ContentRules: r.content,
		Reloads:      r.reloads.Load(),
	}
}

// cacheKey identifies everything the classifier looks at in an event.
// The number is length-prefixed so no choice of number and content can
// collide with another. Content only matters for SMS.
func cacheKey(ev domain.Event, number string) string {
	var b strings.Builder
	b.Grow(len(number) + len(ev.Content) + 16)
	b.WriteString(ev.Kind.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(number)))
	b.WriteByte(':')
	b.WriteString(number)
	if ev.IsSMS() {
		b.WriteString(ev.Content)
	}
	return b.String()
}
