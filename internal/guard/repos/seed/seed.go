// Package seed loads the first-run state from a YAML, JSON or TOML file.
//
// Example (YAML):
//
//	status: ACTIVE
//	auto_reply:
//	  enabled: true
//	  message: 您好，目前不方便接听，稍后回电。
//	rules:
//	  - type: WHITELIST
//	    value: "13800138000"
//	    label: 妈妈
//	  - type: CONTENT
//	    value: 中奖
//	number_lists:
//	  - type: BLACKLIST
//	    path: spam-numbers.txt # relative to this file
//	    label: 骚扰电话
package seed

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/guardia/internal/guard/common/clock"
	"github.com/haukened/guardia/internal/guard/common/ids"
	"github.com/haukened/guardia/internal/guard/common/log"
	"github.com/haukened/guardia/internal/guard/domain"
)

type seedRule struct {
	Type  string `koanf:"type"`
	Value string `koanf:"value"`
	Label string `koanf:"label"`
}

type seedList struct {
	Type  string `koanf:"type"`
	Path  string `koanf:"path"`
	Label string `koanf:"label"`
}

type seedFile struct {
	Status    string `koanf:"status"`
	AutoReply struct {
		Enabled *bool  `koanf:"enabled"`
		Message string `koanf:"message"`
	} `koanf:"auto_reply"`
	Rules []seedRule `koanf:"rules"`
	Lists []seedList `koanf:"number_lists"`
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported seed file type %q", filepath.Ext(path))
	}
}

// Load reads a seed file and builds a State with no logs. Missing fields fall
// back to ACTIVE and the default auto-reply. Rules with an unknown type or an
// empty value are skipped, the rest keep file order and get fresh ids.
// Rules from number_lists follow the inline rules; a list that cannot be
// read fails the whole load.
func Load(path string, clk clock.Clock, gen ids.Generator, logger log.Logger) (domain.State, error) {
	parser, err := parserFor(path)
	if err != nil {
		return domain.State{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return domain.State{}, fmt.Errorf("failed to load seed file %s: %w", path, err)
	}

	var sf seedFile
	if err := k.Unmarshal("", &sf); err != nil {
		return domain.State{}, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	s := domain.State{
		Status:    domain.StatusActive,
		AutoReply: domain.AutoReply{Enabled: true, Message: domain.DefaultAutoReplyMessage},
	}
	if sf.Status != "" {
		if s.Status, err = domain.ParseFirewallStatus(sf.Status); err != nil {
			return domain.State{}, fmt.Errorf("invalid seed file %s: %w", path, err)
		}
	}
	if sf.AutoReply.Enabled != nil {
		s.AutoReply.Enabled = *sf.AutoReply.Enabled
	}
	if sf.AutoReply.Message != "" {
		s.AutoReply.Message = sf.AutoReply.Message
	}

	now := clk.Now()
	for i, sr := range sf.Rules {
		typ, err := domain.ParseRuleType(sr.Type)
		if err != nil {
			logger.Debug(map[string]any{"index": i, "type": sr.Type}, "seed_skip_unknown_type")
			continue
		}
		r, err := domain.NewRule(gen.NewID(), typ, sr.Value, sr.Label, now)
		if err != nil {
			logger.Debug(map[string]any{"index": i, "value": sr.Value, "error": err.Error()}, "seed_skip_invalid_rule")
			continue
		}
		if s, err = s.AddRule(r); err != nil {
			return domain.State{}, err
		}
	}
	for i, sl := range sf.Lists {
		typ, err := domain.ParseRuleType(sl.Type)
		if err != nil {
			return domain.State{}, fmt.Errorf("invalid number list %d in %s: %w", i, path, err)
		}
		listPath := sl.Path
		if !filepath.IsAbs(listPath) {
			listPath = filepath.Join(filepath.Dir(path), listPath)
		}
		rules, err := LoadNumberList(listPath, typ, sl.Label, gen, logger, now)
		if err != nil {
			return domain.State{}, err
		}
		for _, r := range rules {
			if s, err = s.AddRule(r); err != nil {
				return domain.State{}, err
			}
		}
	}
	logger.Info(map[string]any{"path": path, "rules": len(s.Rules), "status": s.Status.String()}, "seed_loaded")
	return s, nil
}
