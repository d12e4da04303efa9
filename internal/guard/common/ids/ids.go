// Package ids generates identifiers for rules and block log entries.
package ids

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out identifiers that are unique for the lifetime of a state.
type Generator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator issues Prefix1, Prefix2, ... Safe for concurrent use.
// Useful in tests where ids must be predictable.
type SequenceGenerator struct {
	Prefix string
	next   atomic.Uint64
}

func (g *SequenceGenerator) NewID() string {
	return g.Prefix + strconv.FormatUint(g.next.Add(1), 10)
}

var (
	_ Generator = UUIDGenerator{}
	_ Generator = (*SequenceGenerator)(nil)
)
