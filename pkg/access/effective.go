package access

// Identity describes the caller as asserted by session handling.
//
// An empty Username means the caller is anonymous. Group memberships are
// taken at face value: the access layer never trusts memberships beyond
// what this context asserts.
type Identity struct {
	// Username is the authenticated username, or "" for anonymous callers.
	Username string

	// Groups lists the group names the user belongs to.
	Groups []string
}

// IsAnonymous reports whether the identity carries no username.
func (id Identity) IsAnonymous() bool {
	return id.Username == ""
}

// Grants captures one mount's access configuration: the public flag plus
// the raw per-user and per-group grant specs.
type Grants struct {
	// Public grants anonymous read access when true.
	Public bool

	// Users maps usernames to their grant specs.
	Users map[string]GrantSpec

	// Groups maps group names to their grant specs.
	Groups map[string]GrantSpec
}

// Effective computes the aggregated permission for one identity against one
// mount's grants.
//
// Aggregation is strictly additive (there is no "deny" action):
//  1. A public mount seeds the result with {read}, for anonymous and
//     authenticated callers alike.
//  2. The identity's per-user spec, if any, is resolved and merged.
//  3. Every matching per-group spec is resolved and merged. Group order
//     does not affect the result.
//
// Returns nil when the caller has no access at all; an aggregated
// permission that ends up empty is normalized to nil so callers never see
// an empty-but-present grant.
func (t ProfileTable) Effective(grants Grants, id Identity) *Permission {
	var aggregated *Permission
	if grants.Public {
		p := NewPermission("read")
		aggregated = &p
	}

	if !id.IsAnonymous() {
		if spec, ok := grants.Users[id.Username]; ok {
			aggregated = mergePermission(aggregated, t.ResolveSpec(spec))
		}
		for _, group := range id.Groups {
			if spec, ok := grants.Groups[group]; ok {
				aggregated = mergePermission(aggregated, t.ResolveSpec(spec))
			}
		}
	}

	if aggregated == nil || aggregated.IsEmpty() {
		return nil
	}
	return aggregated
}

// mergePermission folds an addition into the accumulator, preserving the
// distinction between "no access" (nil) and an accumulated permission.
func mergePermission(current *Permission, addition Permission) *Permission {
	if addition.IsEmpty() {
		return current
	}
	if current == nil {
		return &addition
	}
	merged := current.Merge(addition)
	return &merged
}
