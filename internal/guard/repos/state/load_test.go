package state

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/haukened/guardia/internal/guard/domain"
)

type fakeStore struct {
	s   domain.State
	err error
}

func (f fakeStore) Load() (domain.State, error) { return f.s, f.err }
func (f fakeStore) Save(domain.State) error     { return nil }
func (f fakeStore) Stats() StoreStats           { return StoreStats{} }
func (f fakeStore) Close() error                { return nil }

type recordingLogger struct{ msgs []string }

func (l *recordingLogger) Debug(_ map[string]any, msg string) { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Info(_ map[string]any, msg string)  { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Warn(_ map[string]any, msg string)  { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Error(_ map[string]any, msg string) { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Panic(map[string]any, string)       {}
func (l *recordingLogger) Fatal(map[string]any, string)       {}

func TestLoadOrDefault(t *testing.T) {
	defaults := domain.DefaultState(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	saved := domain.State{Status: domain.StatusPaused}

	cases := []struct {
		name      string
		store     fakeStore
		want      LoadResult
		wantRules int
		wantMsg   string
	}{
		{"loaded", fakeStore{s: saved}, Loaded, 0, "state_loaded"},
		{"empty", fakeStore{err: ErrNotFound}, DefaultsEmpty, 4, "state_not_found_using_defaults"},
		{"corrupt", fakeStore{err: fmt.Errorf("%w: boom", ErrCorrupt)}, DefaultsCorrupt, 4, "state_corrupt_using_defaults"},
		{"io error", fakeStore{err: errors.New("disk on fire")}, DefaultsError, 4, "state_load_failed_using_defaults"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := &recordingLogger{}
			got, res := LoadOrDefault(tc.store, defaults, logger)
			if res != tc.want {
				t.Fatalf("result = %v, want %v", res, tc.want)
			}
			if res.UsedDefaults() != (tc.want != Loaded) {
				t.Errorf("UsedDefaults() = %v", res.UsedDefaults())
			}
			if len(got.Rules) != tc.wantRules {
				t.Errorf("rules = %d, want %d", len(got.Rules), tc.wantRules)
			}
			if len(logger.msgs) != 1 || logger.msgs[0] != tc.wantMsg {
				t.Errorf("logged %v, want [%s]", logger.msgs, tc.wantMsg)
			}
		})
	}
}

func TestLoadOrDefault_ReturnsCopyOfDefaults(t *testing.T) {
	defaults := domain.DefaultState(time.Now())
	got, _ := LoadOrDefault(fakeStore{err: ErrNotFound}, defaults, &recordingLogger{})
	got.Rules[0].Value = "changed"
	if defaults.Rules[0].Value == "changed" {
		t.Fatalf("defaults aliased by result")
	}
}

func TestLoadResult_String(t *testing.T) {
	for res, want := range map[LoadResult]string{
		Loaded:          "loaded",
		DefaultsEmpty:   "defaults_empty",
		DefaultsCorrupt: "defaults_corrupt",
		DefaultsError:   "defaults_error",
	} {
		if got := res.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", res, got, want)
		}
	}
}
