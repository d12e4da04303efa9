package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haukened/guardia/internal/guard/common/clock"
	"github.com/haukened/guardia/internal/guard/common/ids"
	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/domain"
)

const testYAML = `
status: PAUSED
auto_reply:
  enabled: false
  message: 开会中
rules:
  - type: WHITELIST
    value: 13800138000
    label: 妈妈
  - type: blacklist
    value: "400 123 4567"
  - type: GREYLIST
    value: "1"
  - type: CONTENT
    value: ""
  - type: CONTENT
    value: 中奖
`

const testJSON = `{
  "rules": [
    {"type": "CONTENT", "value": "理财投资"},
    {"type": "CONTENT", "value": "中奖"}
  ]
}`

const testTOML = `status = "ACTIVE"

[auto_reply]
message = "busy"

[[rules]]
type = "BLACKLIST"
value = "95588"
`

var testNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func writeAt(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func writeSeed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeAt(t, path, body)
	return path
}

func load(t *testing.T, path string) (domain.State, error) {
	t.Helper()
	return Load(path, &clock.MockClock{CurrentTime: testNow}, &ids.SequenceGenerator{Prefix: "s"}, log.NewNoopLogger())
}

func TestLoad_YAML(t *testing.T) {
	s, err := load(t, writeSeed(t, "seed.yaml", testYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != domain.StatusPaused {
		t.Errorf("Status = %v, want PAUSED", s.Status)
	}
	if s.AutoReply.Enabled || s.AutoReply.Message != "开会中" {
		t.Errorf("AutoReply = %+v", s.AutoReply)
	}
	if len(s.Rules) != 3 {
		t.Fatalf("expected 3 valid rules, got %d: %+v", len(s.Rules), s.Rules)
	}
	want := []struct {
		id    string
		typ   domain.RuleType
		value string
	}{
		{"s1", domain.RuleWhitelist, "13800138000"},
		{"s2", domain.RuleBlacklist, "400 123 4567"},
		{"s4", domain.RuleContent, "中奖"},
	}
	for i, w := range want {
		r := s.Rules[i]
		if r.ID != w.id || r.Type != w.typ || r.Value != w.value {
			t.Errorf("rule %d = %+v, want %+v", i, r, w)
		}
		if !r.CreatedAt.Equal(testNow) {
			t.Errorf("rule %d CreatedAt = %v", i, r.CreatedAt)
		}
	}
	if s.Rules[0].Label != "妈妈" {
		t.Errorf("label lost: %+v", s.Rules[0])
	}
	if len(s.Logs) != 0 {
		t.Errorf("seed must not create logs")
	}
}

func TestLoad_JSONDefaults(t *testing.T) {
	s, err := load(t, writeSeed(t, "seed.json", testJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != domain.StatusActive {
		t.Errorf("Status = %v, want ACTIVE", s.Status)
	}
	if !s.AutoReply.Enabled || s.AutoReply.Message != domain.DefaultAutoReplyMessage {
		t.Errorf("AutoReply should default, got %+v", s.AutoReply)
	}
	if len(s.Rules) != 2 || s.Rules[0].Value != "理财投资" || s.Rules[1].Value != "中奖" {
		t.Errorf("rule order not preserved: %+v", s.Rules)
	}
}

func TestLoad_TOML(t *testing.T) {
	s, err := load(t, writeSeed(t, "seed.toml", testTOML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AutoReply.Message != "busy" || !s.AutoReply.Enabled {
		t.Errorf("AutoReply = %+v", s.AutoReply)
	}
	if len(s.Rules) != 1 || s.Rules[0].Type != domain.RuleBlacklist || s.Rules[0].Value != "95588" {
		t.Errorf("unexpected rules: %+v", s.Rules)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"unsupported extension", writeSeed(t, "seed.ini", "status=ACTIVE")},
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml")},
		{"malformed yaml", writeSeed(t, "bad.yaml", "rules:\n\t- type: [")},
		{"bad status", writeSeed(t, "status.yaml", "status: SLEEPING\n")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(t, tc.path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
