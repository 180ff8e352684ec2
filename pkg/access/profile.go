package access

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named, reusable bundle of action→allowed flags referenced by
// name from grant specs.
//
// Keys are case-insensitive: duplicate case variants of the same action are
// merged with logical OR, so a profile declaring both "Read: true" and
// "read: false" still allows read. Profiles are normalized once at
// configuration load time and immutable afterwards.
type Profile struct {
	actions map[string]bool
}

// NewProfile builds a normalized profile from raw action flags.
func NewProfile(actions map[string]bool) Profile {
	normalized := make(map[string]bool, len(actions))
	for action, allowed := range actions {
		key := strings.ToLower(strings.TrimSpace(action))
		if key == "" {
			continue
		}
		// OR wins: any allowed case variant makes the action allowed.
		normalized[key] = normalized[key] || allowed
	}
	return Profile{actions: normalized}
}

// Permission converts the profile into a Permission containing exactly the
// allowed action tokens.
func (p Profile) Permission() Permission {
	perm := Permission{}
	for action, allowed := range p.actions {
		if allowed {
			perm.add(action)
		}
	}
	return perm
}

// Actions returns a copy of the normalized action flags.
func (p Profile) Actions() map[string]bool {
	actions := make(map[string]bool, len(p.actions))
	for action, allowed := range p.actions {
		actions[action] = allowed
	}
	return actions
}

// MarshalYAML implements yaml.Marshaler.
func (p Profile) MarshalYAML() (any, error) {
	if p.actions == nil {
		return map[string]bool{}, nil
	}
	return p.actions, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting a flat mapping of
// action name to boolean.
func (p *Profile) UnmarshalYAML(node *yaml.Node) error {
	var actions map[string]bool
	if err := node.Decode(&actions); err != nil {
		return err
	}
	*p = NewProfile(actions)
	return nil
}

// ParseProfileValue converts an untyped configuration value (as produced by
// viper) into a Profile. Accepts a map of action name to boolean.
func ParseProfileValue(value any) (Profile, error) {
	switch v := value.(type) {
	case map[string]bool:
		return NewProfile(v), nil
	case map[string]any:
		actions := make(map[string]bool, len(v))
		for action, raw := range v {
			allowed, ok := raw.(bool)
			if !ok {
				return Profile{}, fmt.Errorf("profile action %q must be a boolean, got %T", action, raw)
			}
			actions[action] = allowed
		}
		return NewProfile(actions), nil
	default:
		return Profile{}, fmt.Errorf("profile must be a map of action to boolean, got %T", value)
	}
}

// ProfileTable maps lowercase profile names to normalized profiles.
//
// The table is built once at configuration load time and is read-only for
// the process lifetime, so concurrent lookups need no locking.
type ProfileTable map[string]Profile

// NewProfileTable normalizes profile names to lowercase. When two names
// collide after lowercasing their action flags are OR-merged.
func NewProfileTable(profiles map[string]Profile) ProfileTable {
	table := make(ProfileTable, len(profiles))
	for name, profile := range profiles {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if existing, ok := table[key]; ok {
			merged := existing.Actions()
			for action, allowed := range profile.actions {
				merged[action] = merged[action] || allowed
			}
			table[key] = NewProfile(merged)
			continue
		}
		table[key] = profile
	}
	return table
}

// Lookup retrieves a profile by name, case-insensitively.
func (t ProfileTable) Lookup(name string) (Profile, bool) {
	profile, ok := t[strings.ToLower(strings.TrimSpace(name))]
	return profile, ok
}
