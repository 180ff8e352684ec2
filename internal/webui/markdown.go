package webui

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownInstance is initialized once and reused. The parser configuration
// never changes and goldmark is safe to share; parsing creates per-call
// state.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
			),
		)
	})
	return markdownInstance
}

// renderMarkdown converts markdown source to HTML for embedding in a page.
func renderMarkdown(source []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert(source, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
