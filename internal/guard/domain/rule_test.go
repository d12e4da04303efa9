package domain

import "testing"

func TestParseRuleType(t *testing.T) {
	cases := []struct {
		in      string
		want    RuleType
		wantErr bool
	}{
		{"BLACKLIST", RuleBlacklist, false},
		{"whitelist", RuleWhitelist, false},
		{" Content ", RuleContent, false},
		{"", 0, true},
		{"greylist", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseRuleType(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRuleType(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRuleType(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRuleType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRuleType_String(t *testing.T) {
	cases := []struct {
		typ      RuleType
		expected string
	}{
		{RuleBlacklist, "BLACKLIST"},
		{RuleWhitelist, "WHITELIST"},
		{RuleContent, "CONTENT"},
		{RuleType(42), "RuleType(42)"},
	}
	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.expected {
			t.Errorf("RuleType(%d).String() = %q, want %q", tc.typ, got, tc.expected)
		}
	}
}

func TestNewRule_Valid(t *testing.T) {
	r, err := NewRule(" id1 ", RuleWhitelist, "138 0013 8000", " 妈妈 ", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "id1" {
		t.Errorf("ID = %q, want id1", r.ID)
	}
	if r.Value != "138 0013 8000" {
		t.Errorf("Value should be kept as entered, got %q", r.Value)
	}
	if r.Label != "妈妈" {
		t.Errorf("Label = %q, want 妈妈", r.Label)
	}
}

func TestNewRule_Invalid(t *testing.T) {
	if _, err := NewRule("", RuleContent, "x", "", testNow); err == nil {
		t.Errorf("expected error for empty id")
	}
	if _, err := NewRule("a", RuleBlacklist, "   ", "", testNow); err == nil {
		t.Errorf("expected error for blank number")
	}
	if _, err := NewRule("a", RuleContent, "", "", testNow); err == nil {
		t.Errorf("expected error for empty keyword")
	}
	if _, err := NewRule("a", RuleType(9), "x", "", testNow); err == nil {
		t.Errorf("expected error for unsupported type")
	}
	var zero Rule
	if _, err := NewRule("a", RuleContent, "x", "", zero.CreatedAt); err == nil {
		t.Errorf("expected error for zero createdAt")
	}
}

func TestRule_Matches(t *testing.T) {
	w := rule("w", RuleWhitelist, "138 0013 8000")
	if !w.MatchesNumber("13800138000") {
		t.Errorf("whitelist should match normalized number")
	}
	c := rule("c", RuleContent, "13800138000")
	if c.MatchesNumber("13800138000") {
		t.Errorf("content rule must not match numbers")
	}
	if !c.MatchesContent("call 13800138000 now") {
		t.Errorf("content rule should match substring")
	}
	if w.MatchesContent("138 0013 8000") {
		t.Errorf("number rule must not match content")
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"13800138000", "13800138000"},
		{" 138 0013 8000 ", "13800138000"},
		{"138\t0013\r\n8000", "13800138000"},
		{"+86 138-0013", "+86138-0013"},
		{"\u3000138", "138"},
	}
	for _, tc := range cases {
		if got := NormalizeNumber(tc.in); got != tc.want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseEventKind(t *testing.T) {
	if k, err := ParseEventKind("sms"); err != nil || k != EventSMS {
		t.Fatalf("ParseEventKind(sms) = %v, %v", k, err)
	}
	if k, err := ParseEventKind("CALL"); err != nil || k != EventCall {
		t.Fatalf("ParseEventKind(CALL) = %v, %v", k, err)
	}
	if _, err := ParseEventKind("MMS"); err == nil {
		t.Fatalf("expected error for MMS")
	}
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(EventCall, "1", "dropped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Content != "" || ev.HasContent() {
		t.Errorf("call content should be dropped, got %q", ev.Content)
	}
	ev, err = NewEvent(EventSMS, "1", "body")
	if err != nil || !ev.HasContent() {
		t.Fatalf("sms should keep content: %+v %v", ev, err)
	}
	if _, err := NewEvent(EventKind(0), "1", ""); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestFirewallStatus(t *testing.T) {
	if StatusActive.Toggle() != StatusPaused || StatusPaused.Toggle() != StatusActive {
		t.Fatalf("Toggle should flip")
	}
	if s, err := ParseFirewallStatus("paused"); err != nil || s != StatusPaused {
		t.Fatalf("ParseFirewallStatus(paused) = %v, %v", s, err)
	}
	if _, err := ParseFirewallStatus("off"); err == nil {
		t.Fatalf("expected error")
	}
	if StatusActive.String() != "ACTIVE" {
		t.Fatalf("String() = %q", StatusActive.String())
	}
}
