// Package access implements the permission model for filegate mounts.
//
// Permissions are open-ended sets of lowercase action tokens rather than a
// closed enum: configuration may introduce custom actions (e.g. "publish")
// and grant them alongside the built-in vocabulary. The built-in actions
// recognised by the capability predicates are: read, write, upload, delete,
// rename, modify, create_file and create_folder. "write" is a superset
// action: granting it implies every finer-grained capability.
package access

import (
	"sort"
	"strings"
)

// Permission is a set of lowercase action tokens.
//
// The zero value is the empty permission and is ready to use. Tokens are
// trimmed and lowercased on insertion; empty tokens are never stored.
// Permissions are constructed fresh per request by aggregation and must be
// treated as immutable once handed to a caller: Merge returns a new value
// instead of mutating the receiver.
type Permission struct {
	actions map[string]struct{}
}

// NewPermission builds a permission from the given action tokens.
// Tokens are normalized (trimmed, lowercased); empty tokens are dropped.
func NewPermission(actions ...string) Permission {
	p := Permission{}
	for _, action := range actions {
		p.add(action)
	}
	return p
}

// add inserts a single normalized action token.
func (p *Permission) add(action string) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return
	}
	if p.actions == nil {
		p.actions = make(map[string]struct{})
	}
	p.actions[action] = struct{}{}
}

// Merge returns the union of p and other. Neither input is modified.
// Merge is commutative, associative and idempotent.
func (p Permission) Merge(other Permission) Permission {
	merged := Permission{}
	for action := range p.actions {
		merged.add(action)
	}
	for action := range other.actions {
		merged.add(action)
	}
	return merged
}

// Has reports whether the permission contains the given action token.
// The token is normalized before the lookup.
func (p Permission) Has(action string) bool {
	_, ok := p.actions[strings.ToLower(strings.TrimSpace(action))]
	return ok
}

// HasAny reports whether the permission contains at least one of the
// given action tokens.
func (p Permission) HasAny(actions ...string) bool {
	for _, action := range actions {
		if p.Has(action) {
			return true
		}
	}
	return false
}

// writeImplying lists the actions that imply write access. Granting any of
// these makes a mount "writable" for display purposes, and each one also
// unlocks read (you cannot meaningfully upload to a mount you cannot see).
var writeImplying = []string{
	"write", "upload", "delete", "rename", "modify", "create_file", "create_folder",
}

// AllowsRead reports whether read access is granted, either directly or
// through any write-implying action.
func (p Permission) AllowsRead() bool {
	return p.Has("read") || p.AllowsWrite()
}

// AllowsWrite reports whether any write-implying action is granted.
func (p Permission) AllowsWrite() bool {
	return p.HasAny(writeImplying...)
}

// AllowsUpload reports whether new files may be uploaded.
func (p Permission) AllowsUpload() bool {
	return p.HasAny("upload", "write", "create_file")
}

// AllowsDelete reports whether entries may be deleted.
func (p Permission) AllowsDelete() bool {
	return p.HasAny("delete", "write")
}

// AllowsRename reports whether entries may be renamed.
func (p Permission) AllowsRename() bool {
	return p.HasAny("rename", "write")
}

// AllowsModify reports whether file contents may be edited in place.
func (p Permission) AllowsModify() bool {
	return p.HasAny("modify", "write")
}

// AllowsCreateFile reports whether new files may be created.
func (p Permission) AllowsCreateFile() bool {
	return p.HasAny("create_file", "write")
}

// AllowsCreateFolder reports whether new directories may be created.
func (p Permission) AllowsCreateFolder() bool {
	return p.HasAny("create_folder", "write")
}

// Actions returns the action tokens in sorted order.
// The returned slice is a copy and safe to modify.
func (p Permission) Actions() []string {
	actions := make([]string, 0, len(p.actions))
	for action := range p.actions {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// IsEmpty reports whether the permission grants nothing.
func (p Permission) IsEmpty() bool {
	return len(p.actions) == 0
}

// Equal reports whether two permissions contain the same action set.
func (p Permission) Equal(other Permission) bool {
	if len(p.actions) != len(other.actions) {
		return false
	}
	for action := range p.actions {
		if _, ok := other.actions[action]; !ok {
			return false
		}
	}
	return true
}

// String returns the sorted actions joined with ", " for display.
func (p Permission) String() string {
	return strings.Join(p.Actions(), ", ")
}
