package domain

import (
	"fmt"
	"strings"
)

// FirewallStatus is the global switch gating the matcher.
type FirewallStatus uint8

const (
	StatusActive FirewallStatus = iota
	StatusPaused
)

func (s FirewallStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusPaused:
		return "PAUSED"
	default:
		return fmt.Sprintf("FirewallStatus(%d)", s)
	}
}

// ParseFirewallStatus accepts "ACTIVE" or "PAUSED" (case-insensitive).
func ParseFirewallStatus(s string) (FirewallStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE":
		return StatusActive, nil
	case "PAUSED":
		return StatusPaused, nil
	default:
		return 0, fmt.Errorf("unsupported FirewallStatus: %q", s)
	}
}

// Toggle flips ACTIVE and PAUSED.
func (s FirewallStatus) Toggle() FirewallStatus {
	if s == StatusPaused {
		return StatusActive
	}
	return StatusPaused
}

// AutoReply configures the canned answer sent to whitelisted SMS senders.
type AutoReply struct {
	Enabled bool
	Message string
}
