package domain

import "strings"

// Classify decides what happens to an inbound event.
//
// Evaluation order is fixed and the first match wins:
//  1. PAUSED passes everything without looking at rules.
//  2. A whitelisted number passes, or is auto-replied when it is an SMS and
//     auto-reply is enabled.
//  3. A blacklisted number is blocked.
//  4. An SMS body containing a content keyword is blocked by the first such
//     rule in list order.
//  5. Anything else passes.
//
// Numbers are compared after whitespace removal, keywords case-insensitively.
// Classify never mutates its inputs.
func Classify(ev Event, rules []Rule, status FirewallStatus, reply AutoReply) Outcome {
	if status == StatusPaused {
		return PassOutcome()
	}

	number := NormalizeNumber(ev.Number)

	if r, ok := findNumberRule(rules, RuleWhitelist, number); ok {
		if ev.IsSMS() && reply.Enabled {
			return matched(Outcome{Kind: OutcomeAutoReplied, Reason: ReasonAutoReply, Message: reply.Message}, r)
		}
		return matched(PassOutcome(), r)
	}

	if r, ok := findNumberRule(rules, RuleBlacklist, number); ok {
		return matched(Outcome{Kind: OutcomeBlocked, Reason: ReasonBlacklist}, r)
	}

	if ev.HasContent() {
		if r, ok := findContentRule(rules, ev.Content); ok {
			return matched(Outcome{Kind: OutcomeBlocked, Reason: ReasonContentPrefix + r.Value}, r)
		}
	}
	return PassOutcome()
}

func findNumberRule(rules []Rule, typ RuleType, normalized string) (Rule, bool) {
	for _, r := range rules {
		if r.Type == typ && r.MatchesNumber(normalized) {
			return r, true
		}
	}
	return Rule{}, false
}

func findContentRule(rules []Rule, content string) (Rule, bool) {
	lowered := strings.ToLower(content)
	for _, r := range rules {
		if r.MatchesContent(lowered) {
			return r, true
		}
	}
	return Rule{}, false
}
