// Package sanitize implements the "safe HTML for post content" policy applied
// to hidden content before it is stored.
//
// The policy starts from bluemonday's user-generated-content policy and adds
// the structural markup a rich-text editor produces for posts: alignment
// attributes, captions and class names. Script elements, event handler
// attributes and javascript: URLs are always removed.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// PostPolicy sanitizes markup for storage as post content. It is safe for
// concurrent use once constructed.
type PostPolicy struct {
	policy *bluemonday.Policy
}

// NewPostPolicy builds the post-content policy
func NewPostPolicy() *PostPolicy {
	p := bluemonday.UGCPolicy()

	// Editor output
	p.AllowStyling()
	p.AllowElements("figure", "figcaption", "section", "article", "aside", "mark", "small")
	p.AllowAttrs("align").OnElements("p", "div", "img", "table", "td", "th", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("width", "height", "alt", "title", "loading").OnElements("img")
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).Globally()

	// Media inserted from the library
	p.AllowElements("audio", "video", "source")
	p.AllowAttrs("controls", "preload", "poster").OnElements("audio", "video")
	p.AllowAttrs("src", "type").OnElements("source", "audio", "video")

	return &PostPolicy{policy: p}
}

// SanitizeForPost returns the safe subset of raw
func (p *PostPolicy) SanitizeForPost(raw string) string {
	if raw == "" {
		return ""
	}
	return p.policy.Sanitize(raw)
}
