// Package render implements the content filter chain that hidden markup goes
// through before it is emitted, mirroring what primary page content receives.
package render

import (
	"context"

	"github.com/tendant/hidden-content/pkg/hiddencontent/sanitize"
)

// Filter transforms markup. Filters must not fail; on bad input they return
// the input unchanged.
type Filter func(ctx context.Context, in string) string

type namedFilter struct {
	name   string
	filter Filter
}

// Chain runs filters in the order they were added
type Chain struct {
	filters []namedFilter
}

// NewChain creates an empty chain
func NewChain() *Chain {
	return &Chain{}
}

// NewDefault returns the standard content chain: shortcodes with the
// built-in caption handler, then markdown when enabled. Markdown output goes
// back through the post policy.
func NewDefault(markdown bool) *Chain {
	sc := NewShortcodes()
	sc.Add("caption", Caption)

	c := NewChain().Add("shortcodes", sc.Apply)
	if markdown {
		policy := sanitize.NewPostPolicy()
		c.Add("markdown", NewMarkdown().Apply)
		c.Add("sanitize", func(_ context.Context, in string) string {
			return policy.SanitizeForPost(in)
		})
	}
	return c
}

// Add appends a named filter and returns the chain
func (c *Chain) Add(name string, f Filter) *Chain {
	c.filters = append(c.filters, namedFilter{name: name, filter: f})
	return c
}

// Names lists filter names in execution order
func (c *Chain) Names() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.name
	}
	return names
}

// Render passes raw through every filter
func (c *Chain) Render(ctx context.Context, raw string) string {
	out := raw
	for _, f := range c.filters {
		out = f.filter(ctx, out)
	}
	return out
}
