package harness

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/haukened/guardia/internal/guard/domain"
)

// ErrEmptyCommand is returned for a line holding no command.
var ErrEmptyCommand = errors.New("empty command")

// Codec converts between one framed line and the command/reply types.
// Framing itself is the transport's job.
type Codec interface {
	DecodeCommand(line []byte) (Command, error)
	EncodeReply(r Reply) ([]byte, error)
}

// Command is one request on the stream. Only the fields used by Op are read.
type Command struct {
	ID      string  `json:"id,omitempty"` // echoed back for correlation
	Op      string  `json:"op"`
	Kind    string  `json:"kind,omitempty"`
	Number  string  `json:"number,omitempty"`
	Content string  `json:"content,omitempty"`
	Type    string  `json:"type,omitempty"`
	Value   string  `json:"value,omitempty"`
	Label   string  `json:"label,omitempty"`
	RuleID  string  `json:"rule_id,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
	Message *string `json:"message,omitempty"` // "" clears the reply text
}

// Reply answers exactly one Command.
type Reply struct {
	ID      string      `json:"id,omitempty"`
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
	Outcome *OutcomeDTO `json:"outcome,omitempty"`
	Log     *LogDTO     `json:"log,omitempty"`
	Rule    *RuleDTO    `json:"rule,omitempty"`
	Removed *bool       `json:"removed,omitempty"`
	Status  string      `json:"status,omitempty"`
	State   *StateDTO   `json:"state,omitempty"`
	Stats   *StatsDTO   `json:"stats,omitempty"`
}

type OutcomeDTO struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	RuleID  string `json:"ruleId,omitempty"`
}

type RuleDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Label     string `json:"label,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

type LogDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Number    string `json:"number"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Reason    string `json:"reason"`
}

type AutoReplyDTO struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

type StateDTO struct {
	Rules     []RuleDTO    `json:"rules"`
	Logs      []LogDTO     `json:"logs"`
	Status    string       `json:"status"`
	AutoReply AutoReplyDTO `json:"autoReply"`
}

type StatsDTO struct {
	Status       string `json:"status"`
	Rules        int    `json:"rules"`
	Logs         int    `json:"logs"`
	Saves        uint64 `json:"saves"`
	SaveFailures uint64 `json:"saveFailures"`
	CacheHits    uint64 `json:"cacheHits"`
	CacheMisses  uint64 `json:"cacheMisses"`
	Cached       int    `json:"cached"`
	Prefiltered  uint64 `json:"prefiltered"`
	Reloads      uint64 `json:"reloads"`
	StoreSaves   uint64 `json:"storeSaves"`
	StoreSaved   int64  `json:"storeSavedUnix"`
	StoreBytes   int    `json:"storeBytes"`
}

func outcomeDTO(o domain.Outcome) *OutcomeDTO {
	return &OutcomeDTO{Kind: o.Kind.String(), Reason: o.Reason, Message: o.Message, RuleID: o.RuleID}
}

func ruleDTO(r domain.Rule) RuleDTO {
	return RuleDTO{ID: r.ID, Type: r.Type.String(), Value: r.Value, Label: r.Label, CreatedAt: r.CreatedAt.UnixMilli()}
}

func logDTO(l domain.BlockLog) LogDTO {
	return LogDTO{
		ID:        l.ID,
		Type:      l.Type.String(),
		Number:    l.Number,
		Content:   l.Content,
		Timestamp: l.Timestamp.UnixMilli(),
		Reason:    l.Reason,
	}
}

func stateDTO(s domain.State) *StateDTO {
	out := &StateDTO{
		Rules:     make([]RuleDTO, 0, len(s.Rules)),
		Logs:      make([]LogDTO, 0, len(s.Logs)),
		Status:    s.Status.String(),
		AutoReply: AutoReplyDTO{Enabled: s.AutoReply.Enabled, Message: s.AutoReply.Message},
	}
	for _, r := range s.Rules {
		out.Rules = append(out.Rules, ruleDTO(r))
	}
	for _, l := range s.Logs {
		out.Logs = append(out.Logs, logDTO(l))
	}
	return out
}

type jsonCodec struct{}

// NewJSONCodec returns a Codec for one JSON object per line.
func NewJSONCodec() Codec { return jsonCodec{} }

func (jsonCodec) DecodeCommand(line []byte) (Command, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Command{}, ErrEmptyCommand
	}
	var c Command
	if err := json.Unmarshal(line, &c); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	if c.Op == "" {
		return c, fmt.Errorf("malformed command: missing op")
	}
	return c, nil
}

func (jsonCodec) EncodeReply(r Reply) ([]byte, error) {
	return json.Marshal(r)
}
