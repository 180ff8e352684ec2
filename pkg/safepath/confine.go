package safepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContainmentError indicates that a joined path escaped its canonical root
// even though the relative part passed normalization.
//
// This is a defensive assertion failure, not an ordinary client error: it
// means normalization and confinement disagree, which points at a logic bug
// rather than a malicious request alone. Callers should log it distinctly
// from ErrInvalidPath.
type ContainmentError struct {
	// Root is the canonical mount root the path was checked against.
	Root string

	// Path is the joined path that failed the containment check.
	Path string
}

// Error implements the error interface.
func (e *ContainmentError) Error() string {
	return fmt.Sprintf("path %q escapes mount root %q", e.Path, e.Root)
}

// CanonicalizeRoot resolves a configured mount root to its canonical
// absolute form, creating the directory first if it does not exist.
//
// Creation is idempotent and safe to race: an already-existing directory is
// not an error. The canonical form (absolute, symlinks resolved) is what
// every subsequent containment check compares against, never the raw
// configured path, so symlinked or ".."-relative configuration cannot
// weaken confinement.
//
// Returns an I/O error when the directory cannot be created or
// canonicalized, or when the path exists but is not a directory. Callers
// should treat a failure at startup as fatal for the mount.
func CanonicalizeRoot(configured string) (string, error) {
	if configured == "" {
		return "", fmt.Errorf("mount root path is empty")
	}

	if err := os.MkdirAll(configured, 0o755); err != nil {
		return "", fmt.Errorf("failed to create mount root %q: %w", configured, err)
	}

	abs, err := filepath.Abs(configured)
	if err != nil {
		return "", fmt.Errorf("failed to resolve mount root %q: %w", configured, err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize mount root %q: %w", configured, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to stat mount root %q: %w", canonical, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("mount root %q is not a directory", canonical)
	}

	return canonical, nil
}

// Confine joins a normalized relative path onto a canonical root and
// re-verifies that the result stays inside the root.
//
// An empty relative path yields the root itself. The containment re-check
// is defense in depth: normalization should already have rejected escapes,
// so a failure here returns a *ContainmentError.
//
// The returned path may not exist on disk; existence and type checks are
// the caller's responsibility and must be performed against the confined
// path only.
func Confine(root, relative string) (string, error) {
	if relative == "" {
		return root, nil
	}

	joined := filepath.Join(root, filepath.FromSlash(relative))

	if !Contains(root, joined) {
		return "", &ContainmentError{Root: root, Path: joined}
	}

	return joined, nil
}

// Contains reports whether path is root itself or a descendant of root.
// Both arguments must already be absolute and cleaned; the comparison is
// separator-aware so "/data/publicarchive" is not inside "/data/public".
func Contains(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
