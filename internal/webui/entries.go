package webui

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// treeMaxDepth caps directory tree recursion for the sidebar.
const treeMaxDepth = 12

// Entry is one row of a directory listing.
type Entry struct {
	Name      string `json:"name"`
	IsDir     bool   `json:"is_dir"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"-"`
}

// TreeNode is one directory in the sidebar tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Children []*TreeNode `json:"children"`
}

// collectEntries lists a directory, directories first, case-insensitive by
// name within each group.
func collectEntries(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			// Entry vanished between listing and stat
			continue
		}

		entry := Entry{
			Name:  de.Name(),
			IsDir: de.IsDir(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
			entry.SizeLabel = formatFileSize(info.Size())
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	return entries, nil
}

// buildDirectoryTree walks the directories under root into a tree rooted at
// relative, capped at treeMaxDepth levels. Files are not included; the
// sidebar loads them lazily through the tree API.
func buildDirectoryTree(root, relative string, depth int) (*TreeNode, error) {
	if depth > treeMaxDepth {
		return nil, fmt.Errorf("directory tree deeper than %d levels", treeMaxDepth)
	}

	current := root
	name := "."
	if relative != "" {
		current = filepath.Join(root, filepath.FromSlash(relative))
		name = path.Base(relative)
	}

	node := &TreeNode{
		Name:     name,
		Path:     displayPath(relative),
		Children: []*TreeNode{},
	}

	dirEntries, err := os.ReadDir(current)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", current, err)
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() {
			names = append(names, de.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for _, dirName := range names {
		childRel := dirName
		if relative != "" {
			childRel = relative + "/" + dirName
		}
		child, err := buildDirectoryTree(root, childRel, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// displayPath renders a normalized relative path for URLs and templates,
// with "." standing in for the mount root.
func displayPath(relative string) string {
	if relative == "" {
		return "."
	}
	return relative
}

// parentPath returns the display path of the parent directory, or "" when
// relative is already the root.
func parentPath(relative string) string {
	if relative == "" {
		return ""
	}
	parent := path.Dir(relative)
	if parent == "." {
		return "."
	}
	return parent
}

// buildOpenPaths lists the ancestors of the current path (root included) so
// the sidebar tree can render them expanded.
func buildOpenPaths(current string) map[string]bool {
	open := map[string]bool{".": true}
	if current == "." || current == "" {
		return open
	}

	accumulated := ""
	for _, part := range strings.Split(current, "/") {
		if part == "" || part == "." {
			continue
		}
		if accumulated == "" {
			accumulated = part
		} else {
			accumulated += "/" + part
		}
		open[accumulated] = true
	}

	return open
}

// formatFileSize renders a byte count with a binary unit suffix.
func formatFileSize(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// readmeNames are the filenames rendered as a directory preview, checked in
// order against a case-insensitive match.
var readmeNames = []string{"readme.md", "readme.markdown", "readme.txt", "readme"}

// findReadme returns the name of the first readme-like entry, or "".
func findReadme(entries []Entry) string {
	for _, candidate := range readmeNames {
		for _, entry := range entries {
			if !entry.IsDir && strings.ToLower(entry.Name) == candidate {
				return entry.Name
			}
		}
	}
	return ""
}

// textExtensions lists extensions the inline editor accepts.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".csv": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".xml": true, ".html": true, ".css": true, ".js": true,
	".go": true, ".py": true, ".rs": true, ".sh": true,
	".conf": true, ".cfg": true, ".ini": true, ".log": true,
}

// isTextFile reports whether the filename looks editable as text.
func isTextFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return textExtensions[ext]
}
