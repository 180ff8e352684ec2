package access

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// GrantSpec is the raw per-user or per-group grant value as written in
// configuration, before any token resolution.
//
// Two textual shapes are accepted:
//
//	users:
//	  alice: "read, upload"          # single comma-separated string
//	  bob: ["read", "delete,rename"] # list, entries may themselves be lists
//
// Both flatten to one ordered token list with entries trimmed and empty
// entries dropped. Serialization preserves the shape round-trip: a spec
// holding exactly one token marshals back to the single-string form, zero
// or two-plus tokens marshal to the list form.
//
// GrantSpec values are immutable after construction.
type GrantSpec struct {
	entries []string
}

// NewGrantSpec builds a spec from raw configuration values, splitting each
// value on commas, trimming whitespace and dropping empty entries.
func NewGrantSpec(values ...string) GrantSpec {
	var entries []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				entries = append(entries, part)
			}
		}
	}
	return GrantSpec{entries: entries}
}

// Tokens returns the ordered raw tokens of the spec.
// The returned slice is a copy and safe to modify.
func (s GrantSpec) Tokens() []string {
	tokens := make([]string, len(s.entries))
	copy(tokens, s.entries)
	return tokens
}

// Len returns the number of tokens in the spec.
func (s GrantSpec) Len() int {
	return len(s.entries)
}

// IsZero reports whether the spec holds no tokens.
func (s GrantSpec) IsZero() bool {
	return len(s.entries) == 0
}

// Concat returns a new spec holding the tokens of s followed by other's.
func (s GrantSpec) Concat(other GrantSpec) GrantSpec {
	entries := make([]string, 0, len(s.entries)+len(other.entries))
	entries = append(entries, s.entries...)
	entries = append(entries, other.entries...)
	return GrantSpec{entries: entries}
}

// MarshalYAML implements yaml.Marshaler, preserving the configuration
// shape: exactly one token marshals as a plain string, anything else as a
// sequence.
func (s GrantSpec) MarshalYAML() (any, error) {
	if len(s.entries) == 1 {
		return s.entries[0], nil
	}
	if s.entries == nil {
		return []string{}, nil
	}
	return s.entries, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting either a scalar
// string or a sequence of strings.
func (s *GrantSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		*s = NewGrantSpec(value)
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = NewGrantSpec(values...)
		return nil
	default:
		return fmt.Errorf("grant spec must be a string or a list of strings, got %v", node.Kind)
	}
}

// ParseGrantValue converts an untyped configuration value (as produced by
// viper) into a GrantSpec. Accepts a string, a []string, or a []any of
// strings.
func ParseGrantValue(value any) (GrantSpec, error) {
	switch v := value.(type) {
	case string:
		return NewGrantSpec(v), nil
	case []string:
		return NewGrantSpec(v...), nil
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return GrantSpec{}, fmt.Errorf("grant spec list entry must be a string, got %T", item)
			}
			values = append(values, str)
		}
		return NewGrantSpec(values...), nil
	default:
		return GrantSpec{}, fmt.Errorf("grant spec must be a string or a list of strings, got %T", value)
	}
}
