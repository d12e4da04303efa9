package domain

import (
	"fmt"
	"strings"
)

// RuleType defines what a rule matches against.
//
// BLACKLIST - sender number, blocks
// WHITELIST - sender number, always lets through (and may auto-reply)
// CONTENT   - keyword inside an SMS body, blocks
type RuleType uint8

const (
	RuleBlacklist RuleType = iota + 1
	RuleWhitelist
	RuleContent
)

// String returns the stable wire name of the rule type.
func (t RuleType) String() string {
	switch t {
	case RuleBlacklist:
		return "BLACKLIST"
	case RuleWhitelist:
		return "WHITELIST"
	case RuleContent:
		return "CONTENT"
	default:
		return fmt.Sprintf("RuleType(%d)", t)
	}
}

// ParseRuleType converts a string into a RuleType (case-insensitive).
func ParseRuleType(s string) (RuleType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BLACKLIST":
		return RuleBlacklist, nil
	case "WHITELIST":
		return RuleWhitelist, nil
	case "CONTENT":
		return RuleContent, nil
	default:
		return 0, fmt.Errorf("unsupported RuleType: %q", s)
	}
}

// IsNumberRule reports whether the rule compares against the sender number.
func (t RuleType) IsNumberRule() bool { return t == RuleBlacklist || t == RuleWhitelist }
