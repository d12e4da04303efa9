package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/guardia/internal/guard/repos/verdicts"
)

// filter wraps bits-and-blooms BloomFilter with a mutex.
// The underlying filter is not safe for concurrent Add and Test.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}

// factory implements verdicts.BloomFactory using Size.
type factory struct{}

// NewFactory returns a BloomFactory that sizes filters from capacity and FP rate.
func NewFactory() verdicts.BloomFactory { return factory{} }

func (factory) New(capacity uint64, fpRate float64) verdicts.BloomFilter {
	m, k := Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
