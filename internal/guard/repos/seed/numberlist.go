package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/haukened/guardia/internal/guard/common/ids"
	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/domain"
)

// ParseNumberList parses a newline-delimited list of phone numbers into rules
// of type typ, which must be BLACKLIST or WHITELIST.
//
// Behavior:
// - '#' starts a comment (whole-line or inline)
// - the stored value keeps the number as written, minus surrounding space
// - entries that are not a phone number after normalization are skipped
// - duplicates (by normalized number) are skipped, first-seen order is kept
func ParseNumberList(r io.Reader, typ domain.RuleType, label string, gen ids.Generator, logger log.Logger, now time.Time) ([]domain.Rule, error) {
	if !typ.IsNumberRule() {
		return nil, fmt.Errorf("number list needs a number rule type, got %s", typ)
	}

	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	var out []domain.Rule
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}

		number := domain.NormalizeNumber(raw)
		if !isPhoneNumber(number) {
			logger.Debug(map[string]any{"line": lineNum, "raw": raw}, "skip_invalid_number")
			continue
		}
		if _, ok := seen[number]; ok {
			logger.Debug(map[string]any{"line": lineNum, "number": number}, "skip_duplicate")
			continue
		}

		rule, err := domain.NewRule(gen.NewID(), typ, raw, label, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "raw": raw, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		seen[number] = struct{}{}
		out = append(out, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"type": typ.String(), "count": len(out)}, "parse_number_list_done")
	return out, nil
}

// LoadNumberList opens path and parses it with ParseNumberList.
func LoadNumberList(path string, typ domain.RuleType, label string, gen ids.Generator, logger log.Logger, now time.Time) ([]domain.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open number list %s: %w", path, err)
	}
	defer f.Close()
	rules, err := ParseNumberList(f, typ, label, gen, logger, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read number list %s: %w", path, err)
	}
	return rules, nil
}

// isPhoneNumber accepts digits with an optional leading '+'.
func isPhoneNumber(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
