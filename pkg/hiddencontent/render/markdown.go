package render

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts markdown to HTML, passing raw HTML through untouched so
// editor markup survives the conversion.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a markdown filter
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe())),
	}
}

// Apply converts in; on conversion failure in is returned unchanged
func (m *Markdown) Apply(_ context.Context, in string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(in), &buf); err != nil {
		return in
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
