// Package safepath provides the path-confinement primitives for filegate
// mounts: normalization of caller-supplied relative paths, canonicalization
// of mount roots, confinement of resolved paths inside a root, and filename
// sanitization.
//
// The security contract has two layers. NormalizeRelative rejects any path
// that would ascend above its starting point before any filesystem call is
// made. Confine then re-validates the join against the canonical root, so a
// disagreement between the two layers surfaces as a ContainmentError rather
// than an escape.
package safepath

import (
	"errors"
	"strings"
)

// ErrInvalidPath indicates a caller-supplied path failed normalization:
// either it attempts to escape above the root or it contains a malformed
// component (root marker, drive prefix). Always a client error, never fatal.
var ErrInvalidPath = errors.New("invalid path")

// ErrInvalidFilename indicates a caller-supplied filename could not be
// reduced to a single safe path component.
var ErrInvalidFilename = errors.New("invalid filename")

// NormalizeRelative converts a caller-supplied path string into a safe,
// root-relative path.
//
// Both forward slashes and backslashes are treated as separators so that
// Windows-convention input cannot smuggle components past confinement on a
// POSIX host. "." components and empty segments are dropped, ".." pops the
// previously accepted component, and a ".." with nothing left to pop fails
// with ErrInvalidPath: escapes are rejected here, before any filesystem
// call. Rooted input (leading separator) and drive-prefixed input ("C:...")
// fail for the same reason.
//
// The result uses forward slashes and never contains "." or ".."; the empty
// string denotes the mount root itself ("." and "" both normalize to it).
func NormalizeRelative(raw string) (string, error) {
	if raw == "" || raw == "." {
		return "", nil
	}

	if raw[0] == '/' || raw[0] == '\\' {
		return "", ErrInvalidPath
	}

	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\'
	})

	if len(segments) > 0 && isDrivePrefix(segments[0]) {
		return "", ErrInvalidPath
	}

	normalized := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case ".":
			// Current-directory components are dropped.
		case "..":
			if len(normalized) == 0 {
				return "", ErrInvalidPath
			}
			normalized = normalized[:len(normalized)-1]
		default:
			normalized = append(normalized, segment)
		}
	}

	return strings.Join(normalized, "/"), nil
}

// isDrivePrefix reports whether a segment looks like a Windows volume
// designator such as "C:" or "c:relative".
func isDrivePrefix(segment string) bool {
	if len(segment) < 2 || segment[1] != ':' {
		return false
	}
	c := segment[0]
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

// SanitizeFilename reduces an arbitrary user-supplied name to a single safe
// path component.
//
// Only the final component of the input is kept; any directory structure in
// front of it must be free of parent references, otherwise the whole name
// is rejected. The candidate is trimmed of surrounding whitespace and fails
// with ErrInvalidFilename when empty, when it is "." or "..", or when a
// separator of either convention survives. The returned value is safe to
// join directly onto any directory without traversal risk.
func SanitizeFilename(raw string) (string, error) {
	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return "", ErrInvalidFilename
	}

	// A name arriving with parent references anywhere in it is an escape
	// attempt, not a filename with incidental directory structure.
	for _, segment := range segments {
		if segment == ".." {
			return "", ErrInvalidFilename
		}
	}

	candidate := strings.TrimSpace(segments[len(segments)-1])
	if candidate == "" || candidate == "." || candidate == ".." {
		return "", ErrInvalidFilename
	}
	if strings.ContainsAny(candidate, "/\\") {
		return "", ErrInvalidFilename
	}

	return candidate, nil
}
