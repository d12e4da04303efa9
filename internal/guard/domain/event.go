package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// EventKind identifies the inbound communication channel.
type EventKind uint8

const (
	EventCall EventKind = iota + 1
	EventSMS
)

// String returns the stable name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventCall:
		return "CALL"
	case EventSMS:
		return "SMS"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// ParseEventKind accepts "CALL" or "SMS" (case-insensitive).
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL":
		return EventCall, nil
	case "SMS":
		return EventSMS, nil
	default:
		return 0, fmt.Errorf("unsupported EventKind: %q", s)
	}
}

// Event is an inbound call or SMS to be classified.
// Number is raw and may contain whitespace. Content is only meaningful for SMS.
type Event struct {
	Kind    EventKind
	Number  string
	Content string
}

// NewEvent builds an Event. Content passed for a call is dropped.
func NewEvent(kind EventKind, number, content string) (Event, error) {
	switch kind {
	case EventCall:
		content = ""
	case EventSMS:
	default:
		return Event{}, fmt.Errorf("unsupported EventKind: %d", kind)
	}
	return Event{Kind: kind, Number: number, Content: content}, nil
}

// IsSMS is a convenience accessor.
func (e Event) IsSMS() bool { return e.Kind == EventSMS }

// HasContent reports whether the event carries an SMS body to scan.
func (e Event) HasContent() bool { return e.IsSMS() && e.Content != "" }

// NormalizeNumber removes every whitespace character from a phone number.
// Nothing else is touched; country-code prefixes are compared verbatim.
func NormalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, number)
}
