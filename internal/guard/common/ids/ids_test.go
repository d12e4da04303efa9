package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		u, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("NewID() = %q is not a UUID: %v", id, err)
		}
		if u.Version() != 4 {
			t.Fatalf("expected v4 UUID, got v%d", u.Version())
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := &SequenceGenerator{Prefix: "r"}
	for _, want := range []string{"r1", "r2", "r3"} {
		if got := g.NewID(); got != want {
			t.Fatalf("NewID() = %q, want %q", got, want)
		}
	}
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := &SequenceGenerator{}
	const workers, per = 8, 100
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := g.NewID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("expected %d unique ids, got %d", workers*per, len(seen))
	}
}
