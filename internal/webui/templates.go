package webui

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// treeContext carries the recursion state of the sidebar tree template.
type treeContext struct {
	Mount string
	Node  *TreeNode
	Open  map[string]bool
}

// parseTemplates parses the embedded page templates.
func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"treeItem": func(mount string, node *TreeNode, open map[string]bool) treeContext {
			return treeContext{Mount: mount, Node: node, Open: open}
		},
		"isText": isTextFile,
	}

	tmpl, err := template.New("webui").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}
