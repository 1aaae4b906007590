// pkg/logging/redact.go
package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// RedactionConfig controls sensitive data redaction.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`
}

// DefaultRedactionConfig returns the field names and patterns redacted by
// default.
func DefaultRedactionConfig() RedactionConfig {
	return RedactionConfig{
		Enabled: true,
		Fields: []string{
			"password", "secret", "token", "api_key",
			"authorization", "bearer", "credential", "private_key",
		},
		Patterns: []string{
			`(?i)bearer\s+\S+`,
			`(?i)api[_-]?key[=:]\s*\S+`,
		},
	}
}

const maxPatternLen = 200

type redactor struct {
	fields   map[string]bool
	patterns []*regexp.Regexp
}

// Redact returns a hook that replaces sensitive values anywhere in the
// record, nested maps and slices included. Keys listed in cfg.Fields
// (case-insensitive) become "[REDACTED]"; string values matching one of
// cfg.Patterns become "[REDACTED:pattern]". A disabled config yields the
// identity hook.
func Redact(cfg RedactionConfig) (Hook, error) {
	if !cfg.Enabled {
		return IdentityHook, nil
	}

	r := &redactor{fields: make(map[string]bool, len(cfg.Fields))}
	for _, f := range cfg.Fields {
		r.fields[strings.ToLower(f)] = true
	}
	for _, p := range cfg.Patterns {
		if len(p) > maxPatternLen {
			return nil, fmt.Errorf("redaction pattern too long (max %d chars): %q", maxPatternLen, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return func(rec Record, _ any) Record {
		if rec == nil {
			return rec
		}
		return r.redactMap(rec)
	}, nil
}

func (r *redactor) redactMap(m map[string]any) map[string]any {
	for k, v := range m {
		if r.fields[strings.ToLower(k)] {
			m[k] = "[REDACTED]"
			continue
		}
		m[k] = r.redactValue(v)
	}
	return m
}

func (r *redactor) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		for _, re := range r.patterns {
			if re.MatchString(val) {
				return "[REDACTED:pattern]"
			}
		}
		return val
	case Record:
		return Record(r.redactMap(val.clone()))
	case map[string]any:
		return r.redactMap(Record(val).clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.redactValue(item)
		}
		return out
	default:
		return v
	}
}
