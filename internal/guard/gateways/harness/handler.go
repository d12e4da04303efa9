package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/guardia/internal/guard/domain"
	"github.com/haukened/guardia/internal/guard/services/firewall"
)

// Handler answers decoded commands. The transport only sees this interface.
type Handler interface {
	Handle(ctx context.Context, cmd Command) Reply
}

// Firewall is the subset of *firewall.Service the dispatcher drives.
type Firewall interface {
	Simulate(kind domain.EventKind, number, content string) (domain.Outcome, *domain.BlockLog, error)
	AddRule(typ domain.RuleType, value, label string) (domain.Rule, error)
	RemoveRule(id string) (bool, error)
	ClearLogs() error
	ToggleStatus() (domain.FirewallStatus, error)
	UpdateAutoReply(enabled bool, message string) error
	Snapshot() domain.State
	Stats() firewall.Stats
}

// Dispatcher routes commands by Op to a Firewall.
type Dispatcher struct {
	fw Firewall
}

func NewDispatcher(fw Firewall) *Dispatcher {
	return &Dispatcher{fw: fw}
}

// Handle runs cmd and always produces a reply. A store failure still reports
// the applied change together with the error text.
func (d *Dispatcher) Handle(_ context.Context, cmd Command) Reply {
	r := Reply{ID: cmd.ID}
	var err error

	switch cmd.Op {
	case "simulate":
		var kind domain.EventKind
		if kind, err = domain.ParseEventKind(cmd.Kind); err != nil {
			break
		}
		var o domain.Outcome
		var entry *domain.BlockLog
		o, entry, err = d.fw.Simulate(kind, cmd.Number, cmd.Content)
		if err != nil && !errors.Is(err, firewall.ErrNotSaved) {
			break
		}
		r.Outcome = outcomeDTO(o)
		if entry != nil {
			l := logDTO(*entry)
			r.Log = &l
		}

	case "add_rule":
		var typ domain.RuleType
		if typ, err = domain.ParseRuleType(cmd.Type); err != nil {
			break
		}
		var rule domain.Rule
		rule, err = d.fw.AddRule(typ, cmd.Value, cmd.Label)
		if err != nil && !errors.Is(err, firewall.ErrNotSaved) {
			break
		}
		dto := ruleDTO(rule)
		r.Rule = &dto

	case "remove_rule":
		var removed bool
		removed, err = d.fw.RemoveRule(cmd.RuleID)
		r.Removed = &removed

	case "clear_logs":
		err = d.fw.ClearLogs()

	case "toggle":
		var status domain.FirewallStatus
		status, err = d.fw.ToggleStatus()
		r.Status = status.String()

	case "auto_reply":
		current := d.fw.Snapshot().AutoReply
		enabled, message := current.Enabled, current.Message
		if cmd.Enabled != nil {
			enabled = *cmd.Enabled
		}
		if cmd.Message != nil {
			message = *cmd.Message
		}
		err = d.fw.UpdateAutoReply(enabled, message)

	case "snapshot":
		r.State = stateDTO(d.fw.Snapshot())

	case "stats":
		st := d.fw.Stats()
		r.Stats = &StatsDTO{
			Status:       st.Status.String(),
			Rules:        st.Rules,
			Logs:         st.Logs,
			Saves:        st.Saves,
			SaveFailures: st.SaveFailures,
			CacheHits:    st.Verdicts.Hits,
			CacheMisses:  st.Verdicts.Misses,
			Cached:       st.Verdicts.Cached,
			Prefiltered:  st.Verdicts.Prefiltered,
			Reloads:      st.Verdicts.Reloads,
			StoreSaves:   st.Store.Saves,
			StoreSaved:   st.Store.SavedUnix,
			StoreBytes:   st.Store.Bytes,
		}

	default:
		err = fmt.Errorf("unknown op %q", cmd.Op)
	}

	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.OK = true
	return r
}

var _ Firewall = (*firewall.Service)(nil)
