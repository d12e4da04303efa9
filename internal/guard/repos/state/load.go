package state

import (
	"errors"

	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/domain"
)

// LoadResult tells the caller where the returned state came from.
type LoadResult uint8

const (
	// Loaded means the saved state was used.
	Loaded LoadResult = iota
	// DefaultsEmpty means nothing was saved yet and defaults were used.
	DefaultsEmpty
	// DefaultsCorrupt means saved data was discarded and defaults were used.
	DefaultsCorrupt
	// DefaultsError means the store failed for another reason and defaults were used.
	DefaultsError
)

func (r LoadResult) String() string {
	switch r {
	case Loaded:
		return "loaded"
	case DefaultsEmpty:
		return "defaults_empty"
	case DefaultsCorrupt:
		return "defaults_corrupt"
	default:
		return "defaults_error"
	}
}

// UsedDefaults reports whether the saved state was ignored.
func (r LoadResult) UsedDefaults() bool { return r != Loaded }

// LoadOrDefault loads the saved state and never fails: on any error it logs,
// discards the saved data and returns a copy of defaults. Nothing is retried.
func LoadOrDefault(store Store, defaults domain.State, logger log.Logger) (domain.State, LoadResult) {
	s, err := store.Load()
	switch {
	case err == nil:
		logger.Debug(map[string]any{"rules": len(s.Rules), "logs": len(s.Logs)}, "state_loaded")
		return s, Loaded
	case errors.Is(err, ErrNotFound):
		logger.Info(nil, "state_not_found_using_defaults")
		return defaults.Clone(), DefaultsEmpty
	case errors.Is(err, ErrCorrupt):
		logger.Error(map[string]any{"error": err}, "state_corrupt_using_defaults")
		return defaults.Clone(), DefaultsCorrupt
	default:
		logger.Error(map[string]any{"error": err}, "state_load_failed_using_defaults")
		return defaults.Clone(), DefaultsError
	}
}
