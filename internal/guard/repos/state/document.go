package state

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/haukened/guardia/internal/guard/domain"
)

// document is the persisted JSON shape. Field names and string enums match
// the format the mobile app writes, timestamps are Unix milliseconds.
type document struct {
	Rules            []ruleRecord `json:"rules"`
	Logs             []logRecord  `json:"logs"`
	Status           string       `json:"status"`
	AutoReplyEnabled bool         `json:"autoReplyEnabled"`
	AutoReplyMessage string       `json:"autoReplyMessage"`
}

type ruleRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Label     string `json:"label,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

type logRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Number    string `json:"number"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Reason    string `json:"reason"`
}

// Encode serializes a State into its persisted JSON form.
func Encode(s domain.State) ([]byte, error) {
	doc := document{
		Rules:            make([]ruleRecord, 0, len(s.Rules)),
		Logs:             make([]logRecord, 0, len(s.Logs)),
		Status:           s.Status.String(),
		AutoReplyEnabled: s.AutoReply.Enabled,
		AutoReplyMessage: s.AutoReply.Message,
	}
	for _, r := range s.Rules {
		doc.Rules = append(doc.Rules, ruleRecord{
			ID:        r.ID,
			Type:      r.Type.String(),
			Value:     r.Value,
			Label:     r.Label,
			CreatedAt: r.CreatedAt.UnixMilli(),
		})
	}
	for _, l := range s.Logs {
		doc.Logs = append(doc.Logs, logRecord{
			ID:        l.ID,
			Type:      l.Type.String(),
			Number:    l.Number,
			Content:   l.Content,
			Timestamp: l.Timestamp.UnixMilli(),
			Reason:    l.Reason,
		})
	}
	return json.Marshal(doc)
}

// Decode parses a persisted document. Any syntax error or unknown enum value
// is reported as ErrCorrupt; there is no schema versioning to fall back on.
func Decode(b []byte) (domain.State, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	status, err := domain.ParseFirewallStatus(doc.Status)
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s := domain.State{
		Rules:     make([]domain.Rule, 0, len(doc.Rules)),
		Logs:      make([]domain.BlockLog, 0, len(doc.Logs)),
		Status:    status,
		AutoReply: domain.AutoReply{Enabled: doc.AutoReplyEnabled, Message: doc.AutoReplyMessage},
	}
	for i, rr := range doc.Rules {
		typ, err := domain.ParseRuleType(rr.Type)
		if err != nil {
			return domain.State{}, fmt.Errorf("%w: rule %d: %v", ErrCorrupt, i, err)
		}
		s.Rules = append(s.Rules, domain.Rule{
			ID:        rr.ID,
			Type:      typ,
			Value:     rr.Value,
			Label:     rr.Label,
			CreatedAt: time.UnixMilli(rr.CreatedAt),
		})
	}
	for i, lr := range doc.Logs {
		typ, err := domain.ParseLogType(lr.Type)
		if err != nil {
			return domain.State{}, fmt.Errorf("%w: log %d: %v", ErrCorrupt, i, err)
		}
		s.Logs = append(s.Logs, domain.BlockLog{
			ID:        lr.ID,
			Type:      typ,
			Number:    lr.Number,
			Content:   lr.Content,
			Timestamp: time.UnixMilli(lr.Timestamp),
			Reason:    lr.Reason,
		})
	}
	return s, nil
}
