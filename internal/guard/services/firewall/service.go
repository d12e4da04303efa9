// Package firewall owns the application state and is the entry point for
// simulated calls and messages.
package firewall

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haukened/guardia/internal/guard/common/clock"
	"github.com/haukened/guardia/internal/guard/common/ids"
	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/repos/state"
	"github.com/haukened/guardia/internal/guard/repos/verdicts"
)

// ErrNotSaved wraps a store failure. The change it accompanies has already
// been applied in memory.
var ErrNotSaved = errors.New("state not saved")

// Service serializes every state transition behind one mutex. After each
// change the verdict repository is reloaded and the state is saved.
type Service struct {
	mu    sync.Mutex
	state domain.State

	repo   verdicts.Repository
	store  state.Store
	clock  clock.Clock
	ids    ids.Generator
	logger log.Logger

	saves        atomic.Uint64
	saveFailures atomic.Uint64
}

type Options struct {
	Repo   verdicts.Repository
	Store  state.Store // nil disables persistence
	Clock  clock.Clock
	IDs    ids.Generator
	Logger log.Logger
}

// Stats is a point-in-time view of the service and its verdict repository.
type Stats struct {
	Status       domain.FirewallStatus
	Rules        int
	Logs         int
	Saves        uint64 // successful saves by this process
	SaveFailures uint64
	Store        state.StoreStats // zero without a store
	Verdicts     verdicts.RepoStats
}

// New builds a Service starting from initial and loads it into the repository.
func New(initial domain.State, opts Options) *Service {
	s := &Service{
		state:  initial.Clone(),
		repo:   opts.Repo,
		store:  opts.Store,
		clock:  opts.Clock,
		ids:    opts.IDs,
		logger: opts.Logger,
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.ids == nil {
		s.ids = ids.UUIDGenerator{}
	}
	if s.logger == nil {
		s.logger = log.NewNoopLogger()
	}
	s.repo.Reload(verdicts.SnapshotOf(s.state))
	return s
}

// Simulate runs one incoming call or SMS through the firewall. BLOCKED and
// AUTO_REPLIED outcomes are recorded as the newest log entry, which is also
// returned. PASS returns a nil log and leaves the state untouched.
func (s *Service) Simulate(kind domain.EventKind, number, content string) (domain.Outcome, *domain.BlockLog, error) {
	ev, err := domain.NewEvent(kind, number, content)
	if err != nil {
		return domain.Outcome{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.repo.Decide(ev)
	if !o.Logged() {
		s.logger.Debug(map[string]any{"kind": ev.Kind.String(), "number": ev.Number}, "event_passed")
		return o, nil, nil
	}
	entry, _ := domain.NewBlockLog(s.ids.NewID(), ev, o, s.clock.Now())

	s.logger.Info(map[string]any{
		"kind":    ev.Kind.String(),
		"number":  ev.Number,
		"outcome": o.Kind.String(),
		"reason":  o.Reason,
		"rule_id": o.RuleID,
	}, "event_logged")

	err = s.commit(s.state.PrependLog(entry), false, "simulate")
	return o, &entry, err
}

// AddRule creates a rule with a fresh id and appends it to the rule list.
func (s *Service) AddRule(typ domain.RuleType, value, label string) (domain.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := domain.NewRule(s.ids.NewID(), typ, value, label, s.clock.Now())
	if err != nil {
		return domain.Rule{}, fmt.Errorf("invalid rule: %w", err)
	}
	next, err := s.state.AddRule(r)
	if err != nil {
		return domain.Rule{}, err
	}
	s.logger.Info(map[string]any{"id": r.ID, "type": r.Type.String(), "value": r.Value}, "rule_added")
	return r, s.commit(next, true, "add_rule")
}

// RemoveRule deletes the rule with id. It reports false when no rule matched,
// in which case nothing is saved.
func (s *Service) RemoveRule(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.state.RemoveRule(id)
	if !ok {
		return false, nil
	}
	s.logger.Info(map[string]any{"id": id}, "rule_removed")
	return true, s.commit(next, true, "remove_rule")
}

// ClearLogs empties the block log.
func (s *Service) ClearLogs() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.state.ClearLogs(), false, "clear_logs")
}

// ToggleStatus flips between ACTIVE and PAUSED and returns the new status.
func (s *Service) ToggleStatus() (domain.FirewallStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.ToggleStatus()
	s.logger.Info(map[string]any{"status": next.Status.String()}, "status_toggled")
	return next.Status, s.commit(next, true, "toggle")
}

func (s *Service) UpdateAutoReply(enabled bool, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.state.WithAutoReply(enabled, message), true, "auto_reply")
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	st := Stats{
		Status: s.state.Status,
		Rules:  len(s.state.Rules),
		Logs:   len(s.state.Logs),
	}
	s.mu.Unlock()
	st.Saves = s.saves.Load()
	st.SaveFailures = s.saveFailures.Load()
	st.Verdicts = s.repo.Stats()
	if s.store != nil {
		st.Store = s.store.Stats()
	}
	return st
}

// commit installs next as the current state. reload must be set whenever
// rules, status or auto-reply changed. Caller holds s.mu.
func (s *Service) commit(next domain.State, reload bool, op string) error {
	s.state = next
	if reload {
		s.repo.Reload(verdicts.SnapshotOf(next))
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(next); err != nil {
		s.saveFailures.Add(1)
		s.logger.Error(map[string]any{"op": op, "error": err}, "state_save_failed")
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	s.saves.Add(1)
	return nil
}
