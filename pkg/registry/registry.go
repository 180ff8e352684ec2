package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/filegate/pkg/access"
	"github.com/marmos91/filegate/pkg/config"
	"github.com/marmos91/filegate/pkg/safepath"
)

// Registry holds all mounts with canonicalized roots, the normalized profile
// table, and the group memberships of configured users. It provides
// thread-safe lookup of mounts and per-identity permission resolution.
//
// Example usage:
//
//	reg, _ := registry.Build(cfg)
//	mount, _ := reg.GetMount("docs")
//	perm := reg.Effective("docs", reg.Identity("alice"))
type Registry struct {
	mu       sync.RWMutex
	mounts   map[string]*Mount
	profiles access.ProfileTable
	groups   map[string][]string // username -> group names
}

// Mount is a shared directory with a canonicalized root.
type Mount struct {
	// Name is the mount name used in URLs
	Name string

	// Root is the canonical absolute root directory, symlinks resolved
	Root string

	// Description is shown next to the mount in listings
	Description string

	// Public grants anonymous read access
	Public bool

	grants access.Grants
}

// Grants returns the mount's access configuration.
func (m *Mount) Grants() access.Grants {
	return m.grants
}

// Build constructs a registry from configuration.
//
// Every mount root is created and canonicalized up front. A root that cannot
// be canonicalized (unwritable parent, path points at a file) aborts the
// build: serving a mount whose root is unverified would undermine path
// containment checks later.
//
// Returns an error naming the offending mount on failure.
func Build(cfg *config.Config) (*Registry, error) {
	reg := &Registry{
		mounts:   make(map[string]*Mount, len(cfg.Mounts)),
		profiles: buildProfiles(cfg.Profiles),
		groups:   make(map[string][]string, len(cfg.Users)),
	}

	for name, mountCfg := range cfg.Mounts {
		root, err := safepath.CanonicalizeRoot(mountCfg.Path)
		if err != nil {
			return nil, fmt.Errorf("mount %q: %w", name, err)
		}

		reg.mounts[name] = &Mount{
			Name:        name,
			Root:        root,
			Description: mountCfg.Description,
			Public:      mountCfg.Public,
			grants:      mountCfg.Grants(),
		}
	}

	for username, user := range cfg.Users {
		groups := make([]string, len(user.Groups))
		copy(groups, user.Groups)
		reg.groups[username] = groups
	}

	return reg, nil
}

// buildProfiles normalizes the configured profiles into a lookup table.
func buildProfiles(profiles map[string]access.Profile) access.ProfileTable {
	if len(profiles) == 0 {
		return access.ProfileTable{}
	}
	return access.NewProfileTable(profiles)
}

// GetMount retrieves a mount by name.
// Returns nil, error if the mount doesn't exist.
func (r *Registry) GetMount(name string) (*Mount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mount, exists := r.mounts[name]
	if !exists {
		return nil, fmt.Errorf("mount %q not found", name)
	}
	return mount, nil
}

// MountExists checks if a mount with the given name exists.
func (r *Registry) MountExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.mounts[name]
	return exists
}

// ListMounts returns all mounts sorted by name.
// The returned slice is a copy and safe to modify.
func (r *Registry) ListMounts() []*Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mounts := make([]*Mount, 0, len(r.mounts))
	for _, mount := range r.mounts {
		mounts = append(mounts, mount)
	}
	sort.Slice(mounts, func(i, j int) bool {
		return mounts[i].Name < mounts[j].Name
	})
	return mounts
}

// CountMounts returns the number of registered mounts.
func (r *Registry) CountMounts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mounts)
}

// Identity builds the access identity for a username from configured group
// memberships. An empty username yields the anonymous identity.
func (r *Registry) Identity(username string) access.Identity {
	if strings.TrimSpace(username) == "" {
		return access.Identity{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := r.groups[username]
	copied := make([]string, len(groups))
	copy(copied, groups)

	return access.Identity{Username: username, Groups: copied}
}

// Profiles returns the normalized profile table.
func (r *Registry) Profiles() access.ProfileTable {
	return r.profiles
}

// Effective computes the aggregated permission for an identity on a mount.
// Returns nil when the mount doesn't exist or the identity has no access.
func (r *Registry) Effective(mountName string, id access.Identity) *access.Permission {
	mount, err := r.GetMount(mountName)
	if err != nil {
		return nil
	}
	return r.profiles.Effective(mount.grants, id)
}

// Visible returns the mounts the identity can at least read, sorted by name.
func (r *Registry) Visible(id access.Identity) []*Mount {
	all := r.ListMounts()
	visible := make([]*Mount, 0, len(all))
	for _, mount := range all {
		if perm := r.profiles.Effective(mount.grants, id); perm != nil && perm.AllowsRead() {
			visible = append(visible, mount)
		}
	}
	return visible
}
