package domain

import "fmt"

// Fixed reason texts recorded in the block log.
const (
	ReasonAutoReply     = "已自动回复白名单用户"
	ReasonBlacklist     = "黑名单号码拦截"
	ReasonContentPrefix = "垃圾短信关键字: "
)

// OutcomeKind is the classifier verdict.
type OutcomeKind uint8

const (
	OutcomePass OutcomeKind = iota
	OutcomeAutoReplied
	OutcomeBlocked
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePass:
		return "PASS"
	case OutcomeAutoReplied:
		return "AUTO_REPLIED"
	case OutcomeBlocked:
		return "BLOCKED"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome represents the result of classifying an event against a rule set.
// Pure value type, no external dependencies.
type Outcome struct {
	Kind    OutcomeKind
	Reason  string // human-readable, empty for PASS
	Message string // auto-reply text, set only for AUTO_REPLIED

	// Matched rule, zero when nothing matched. A whitelisted PASS still
	// reports the whitelist rule.
	RuleID    string
	RuleType  RuleType
	RuleValue string
}

// PassOutcome returns a silent pass.
func PassOutcome() Outcome { return Outcome{Kind: OutcomePass} }

// IsPass is a convenience accessor.
func (o Outcome) IsPass() bool { return o.Kind == OutcomePass }

// IsBlocked is a convenience accessor.
func (o Outcome) IsBlocked() bool { return o.Kind == OutcomeBlocked }

// IsAutoReplied is a convenience accessor.
func (o Outcome) IsAutoReplied() bool { return o.Kind == OutcomeAutoReplied }

// Logged reports whether the caller must record a BlockLog for this outcome.
func (o Outcome) Logged() bool { return o.Kind != OutcomePass }

func matched(o Outcome, r Rule) Outcome {
	o.RuleID = r.ID
	o.RuleType = r.Type
	o.RuleValue = r.Value
	return o
}
