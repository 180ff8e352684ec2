package access

import "strings"

// ResolveToken resolves a single raw grant token into a Permission.
//
// Resolution order:
//  1. Shorthand letters: "r"/"read", "w"/"write", "rw"/"readwrite"/"read_write".
//  2. A named profile in the table (case-insensitive).
//  3. Anything else is a literal custom action token.
//
// There is no error path: every input resolves to some Permission, possibly
// empty. Unknown tokens are deliberately never rejected so configuration can
// use free-form action vocabularies; operators are responsible for not
// introducing useless permission strings.
func (t ProfileTable) ResolveToken(token string) Permission {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return Permission{}
	}

	switch token {
	case "r", "read":
		return NewPermission("read")
	case "w", "write":
		return NewPermission("write")
	case "rw", "readwrite", "read_write":
		return NewPermission("read", "write")
	}

	if profile, ok := t.Lookup(token); ok {
		return profile.Permission()
	}

	return NewPermission(token)
}

// ResolveSpec resolves every token of a grant spec and returns the union of
// the resulting permissions. Token order does not affect the result.
func (t ProfileTable) ResolveSpec(spec GrantSpec) Permission {
	resolved := Permission{}
	for _, token := range spec.Tokens() {
		resolved = resolved.Merge(t.ResolveToken(token))
	}
	return resolved
}
