// Package memory keeps the encoded state document in process memory.
// It stores the same JSON bytes the bolt store would, so encoding problems
// surface here as well.
package memory

import (
	"sync"

	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/repos/state"
)

type Store struct {
	mu    sync.RWMutex
	raw   []byte
	saves uint64
}

func New() *Store { return &Store{} }

func (s *Store) Load() (domain.State, error) {
	s.mu.RLock()
	raw := s.raw
	s.mu.RUnlock()
	if raw == nil {
		return domain.State{}, state.ErrNotFound
	}
	return state.Decode(raw)
}

func (s *Store) Save(st domain.State) error {
	raw, err := state.Encode(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = raw
	s.saves++
	s.mu.Unlock()
	return nil
}

// Put replaces the stored bytes verbatim.
func (s *Store) Put(raw []byte) {
	s.mu.Lock()
	s.raw = append([]byte(nil), raw...)
	s.mu.Unlock()
}

func (s *Store) Close() error { return nil }

func (s *Store) Stats() state.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return state.StoreStats{Saves: s.saves, Bytes: len(s.raw)}
}

var _ state.Store = (*Store)(nil)
