package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rule is a single user-defined criterion used to classify inbound events.
//
// Notes:
// - Value is kept as entered; number rules are normalized at match time.
// - Rules are immutable once created. There is no update, only add and remove.
type Rule struct {
	ID        string    // unique within a rule set
	Type      RuleType  // blacklist, whitelist or content keyword
	Value     string    // phone number or keyword
	Label     string    // optional, e.g. "妈妈"
	CreatedAt time.Time // creation timestamp
}

// NewRule constructs a Rule and validates its fields.
func NewRule(id string, typ RuleType, value, label string, createdAt time.Time) (Rule, error) {
	r := Rule{
		ID:        strings.TrimSpace(id),
		Type:      typ,
		Value:     value,
		Label:     strings.TrimSpace(label),
		CreatedAt: createdAt,
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Validate checks the Rule for required fields and supported values.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	switch r.Type {
	case RuleBlacklist, RuleWhitelist:
		if NormalizeNumber(r.Value) == "" {
			return fmt.Errorf("rule value must contain a number")
		}
	case RuleContent:
		if r.Value == "" {
			return fmt.Errorf("rule keyword must not be empty")
		}
	default:
		return fmt.Errorf("unsupported RuleType: %d", r.Type)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("rule createdAt must be set")
	}
	return nil
}

// MatchesNumber reports whether a number rule equals the already normalized number.
// Content rules never match a number.
func (r Rule) MatchesNumber(normalized string) bool {
	return r.Type.IsNumberRule() && NormalizeNumber(r.Value) == normalized
}

// MatchesContent reports whether a content rule's keyword occurs in the
// already lowercased message body.
func (r Rule) MatchesContent(lowered string) bool {
	return r.Type == RuleContent && strings.Contains(lowered, strings.ToLower(r.Value))
}
