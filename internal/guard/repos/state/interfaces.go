package state

import (
	"errors"

	"github.com/haukened/guardia/internal/guard/domain"
)

var (
	// ErrNotFound reports that nothing has been saved yet.
	ErrNotFound = errors.New("state not found")
	// ErrCorrupt reports saved data that cannot be decoded into a State.
	ErrCorrupt = errors.New("state corrupt")
)

// Store persists the whole application state as a single document.
// - Load: ErrNotFound when empty, ErrCorrupt (wrapped) when undecodable
// - Save: replaces the document
// - Stats: save bookkeeping, best effort
// - Close: release resources
type Store interface {
	Load() (domain.State, error)
	Save(s domain.State) error
	Stats() StoreStats
	Close() error
}

// StoreStats captures high-level metadata for a persistent store.
type StoreStats struct {
	Saves     uint64
	SavedUnix int64 // seconds since epoch, 0 if never saved
	Bytes     int   // size of the current document
}
