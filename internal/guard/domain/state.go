package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateRuleID is returned when a rule is added with an ID already in the set.
var ErrDuplicateRuleID = errors.New("duplicate rule id")

// DefaultAutoReplyMessage is the reply text used until the user changes it.
const DefaultAutoReplyMessage = "您好，目前不方便接听，稍后回电。"

// State is the whole application state: rules, logs, status and auto-reply.
//
// It is a plain value. Transitions return a new State and never modify the
// receiver's slices, so a State handed to a reader stays stable.
type State struct {
	Rules     []Rule
	Logs      []BlockLog // newest first
	Status    FirewallStatus
	AutoReply AutoReply
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Rules = append([]Rule(nil), s.Rules...)
	out.Logs = append([]BlockLog(nil), s.Logs...)
	return out
}

// Classify runs the classifier against this state.
func (s State) Classify(ev Event) Outcome {
	return Classify(ev, s.Rules, s.Status, s.AutoReply)
}

// FindRule returns the rule with the given id.
func (s State) FindRule(id string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// AddRule appends a validated rule, rejecting duplicate ids.
func (s State) AddRule(r Rule) (State, error) {
	if err := r.Validate(); err != nil {
		return s, err
	}
	if _, ok := s.FindRule(r.ID); ok {
		return s, fmt.Errorf("%w: %q", ErrDuplicateRuleID, r.ID)
	}
	out := s
	out.Rules = make([]Rule, 0, len(s.Rules)+1)
	out.Rules = append(append(out.Rules, s.Rules...), r)
	return out, nil
}

// RemoveRule drops the rule with the given id. A missing id is a no-op and
// reports false.
func (s State) RemoveRule(id string) (State, bool) {
	out := s
	out.Rules = make([]Rule, 0, len(s.Rules))
	removed := false
	for _, r := range s.Rules {
		if r.ID == id {
			removed = true
			continue
		}
		out.Rules = append(out.Rules, r)
	}
	if !removed {
		return s, false
	}
	return out, true
}

// ClearLogs resets the log sequence.
func (s State) ClearLogs() State {
	out := s
	out.Logs = nil
	return out
}

// ToggleStatus flips ACTIVE and PAUSED.
func (s State) ToggleStatus() State {
	out := s
	out.Status = s.Status.Toggle()
	return out
}

// WithAutoReply replaces the auto-reply configuration.
func (s State) WithAutoReply(enabled bool, message string) State {
	out := s
	out.AutoReply = AutoReply{Enabled: enabled, Message: message}
	return out
}

// PrependLog records a log entry as the newest one.
func (s State) PrependLog(l BlockLog) State {
	out := s
	out.Logs = make([]BlockLog, 0, len(s.Logs)+1)
	out.Logs = append(append(out.Logs, l), s.Logs...)
	return out
}

// DefaultState returns the built-in starting state: a sample whitelist
// contact, a blacklisted number, two spam keywords and two example logs.
func DefaultState(now time.Time) State {
	return State{
		Rules: []Rule{
			{ID: "1", Type: RuleWhitelist, Value: "13800138000", Label: "妈妈", CreatedAt: now.Add(-1000 * time.Second)},
			{ID: "2", Type: RuleBlacklist, Value: "4001234567", Label: "疑似诈骗", CreatedAt: now.Add(-500 * time.Second)},
			{ID: "3", Type: RuleContent, Value: "理财投资", CreatedAt: now.Add(-200 * time.Second)},
			{ID: "4", Type: RuleContent, Value: "中奖", CreatedAt: now.Add(-100 * time.Second)},
		},
		Logs: []BlockLog{
			{
				ID:        "l1",
				Type:      LogSMS,
				Number:    "106900001234",
				Content:   "恭喜您成为本周幸运星，点击链接领取您的中奖奖品！",
				Timestamp: now.Add(-time.Hour),
				Reason:    "内容过滤 (中奖)",
			},
			{
				ID:        "l2",
				Type:      LogCall,
				Number:    "4001234567",
				Timestamp: now.Add(-2 * time.Hour),
				Reason:    "黑名单号码",
			},
		},
		Status:    StatusActive,
		AutoReply: AutoReply{Enabled: true, Message: DefaultAutoReplyMessage},
	}
}
