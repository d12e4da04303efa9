package verdicts

import "github.com/haukened/guardia/internal/guard/domain"

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds a filter sized for capacity keys at the target
// false-positive rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches outcomes by event key with basic metrics.
type DecisionCache interface {
	Get(key string) (domain.Outcome, bool)
	Put(key string, o domain.Outcome)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// Snapshot is the slice of application state the classifier depends on.
type Snapshot struct {
	Rules     []domain.Rule
	Status    domain.FirewallStatus
	AutoReply domain.AutoReply
}

// SnapshotOf extracts the classifier inputs from a State.
func SnapshotOf(s domain.State) Snapshot {
	return Snapshot{Rules: s.Rules, Status: s.Status, AutoReply: s.AutoReply}
}

// RepoStats exposes repository-level counters.
type RepoStats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	Cached       int
	Prefiltered  uint64 // events passed by the Bloom filter without a scan
	NumberRules  int
	ContentRules int
	Reloads      uint64
}

// Repository is the composition layer that wires bloom → cache → classifier.
// Decide must always agree with domain.Classify on the current snapshot.
type Repository interface {
	Decide(ev domain.Event) domain.Outcome
	Reload(s Snapshot)
	Stats() RepoStats
}
