package domain

import (
	"fmt"
	"strings"
	"time"
)

// LogType tags a block log entry with what produced it.
type LogType uint8

const (
	LogSMS LogType = iota + 1
	LogCall
	LogAutoReply
)

func (t LogType) String() string {
	switch t {
	case LogSMS:
		return "SMS"
	case LogCall:
		return "CALL"
	case LogAutoReply:
		return "AUTO_REPLY"
	default:
		return fmt.Sprintf("LogType(%d)", t)
	}
}

// ParseLogType accepts "SMS", "CALL" or "AUTO_REPLY" (case-insensitive).
func ParseLogType(s string) (LogType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SMS":
		return LogSMS, nil
	case "CALL":
		return LogCall, nil
	case "AUTO_REPLY":
		return LogAutoReply, nil
	default:
		return 0, fmt.Errorf("unsupported LogType: %q", s)
	}
}

// BlockLog records a blocked or auto-replied event for later review.
// Entries are never mutated.
type BlockLog struct {
	ID        string
	Type      LogType
	Number    string // raw number as received
	Content   string // SMS body, or the auto-reply text for AUTO_REPLY
	Timestamp time.Time
	Reason    string
}

// NewBlockLog materializes the log entry a caller records for an outcome.
// It returns false for PASS, which is never logged.
//
// BLOCKED entries carry the event kind and original content. AUTO_REPLIED
// entries are typed AUTO_REPLY and carry the reply message.
func NewBlockLog(id string, ev Event, o Outcome, at time.Time) (BlockLog, bool) {
	l := BlockLog{ID: id, Number: ev.Number, Timestamp: at, Reason: o.Reason}
	switch o.Kind {
	case OutcomeAutoReplied:
		l.Type = LogAutoReply
		l.Content = o.Message
	case OutcomeBlocked:
		l.Type = LogCall
		if ev.IsSMS() {
			l.Type = LogSMS
			l.Content = ev.Content
		}
	default:
		return BlockLog{}, false
	}
	return l, true
}
