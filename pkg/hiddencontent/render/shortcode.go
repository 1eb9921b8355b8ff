package render

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Attrs holds shortcode attributes. Positional values are keyed "0", "1", ...
type Attrs map[string]string

// Get returns the attribute or def when missing
func (a Attrs) Get(key, def string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// ShortcodeFunc renders one shortcode occurrence
type ShortcodeFunc func(ctx context.Context, attrs Attrs, inner string) string

// Shortcodes expands registered [name attr="v"]inner[/name] tags. Unknown
// tags are left in place and [[name]] escapes to a literal [name].
type Shortcodes struct {
	handlers map[string]ShortcodeFunc
}

// NewShortcodes creates an empty registry
func NewShortcodes() *Shortcodes {
	return &Shortcodes{handlers: make(map[string]ShortcodeFunc)}
}

// Add registers fn under name
func (s *Shortcodes) Add(name string, fn ShortcodeFunc) {
	s.handlers[strings.ToLower(name)] = fn
}

// Has reports whether name is registered
func (s *Shortcodes) Has(name string) bool {
	_, ok := s.handlers[strings.ToLower(name)]
	return ok
}

// Apply expands every registered shortcode in in
func (s *Shortcodes) Apply(ctx context.Context, in string) string {
	if len(s.handlers) == 0 || !strings.Contains(in, "[") {
		return in
	}

	var b strings.Builder
	i := 0
	for i < len(in) {
		open := strings.IndexByte(in[i:], '[')
		if open < 0 {
			b.WriteString(in[i:])
			break
		}
		b.WriteString(in[i : i+open])
		i += open

		next, out, ok := s.expand(ctx, in, i)
		if !ok {
			b.WriteByte('[')
			i++
			continue
		}
		b.WriteString(out)
		i = next
	}
	return b.String()
}

// expand tries to expand a shortcode starting at in[start] == '['. It returns
// the index after the consumed text and the replacement.
func (s *Shortcodes) expand(ctx context.Context, in string, start int) (int, string, bool) {
	// [[name]] is an escaped literal
	if strings.HasPrefix(in[start:], "[[") {
		end := strings.Index(in[start:], "]]")
		if end < 0 {
			return 0, "", false
		}
		name := readName(in[start+2:])
		if !s.Has(name) {
			return 0, "", false
		}
		return start + end + 2, in[start+1 : start+end+1], true
	}

	name := readName(in[start+1:])
	if name == "" || !s.Has(name) {
		return 0, "", false
	}
	rest := start + 1 + len(name)
	closeIdx := strings.IndexByte(in[rest:], ']')
	if closeIdx < 0 {
		return 0, "", false
	}
	rawAttrs := in[rest : rest+closeIdx]
	afterOpen := rest + closeIdx + 1

	trimmed := strings.TrimSpace(rawAttrs)
	selfClosing := strings.HasSuffix(trimmed, "/")
	if selfClosing {
		rawAttrs = strings.TrimSuffix(trimmed, "/")
	}

	inner := ""
	next := afterOpen
	if !selfClosing {
		closing := "[/" + name + "]"
		if idx := strings.Index(strings.ToLower(in[afterOpen:]), strings.ToLower(closing)); idx >= 0 {
			inner = in[afterOpen : afterOpen+idx]
			next = afterOpen + idx + len(closing)
		}
	}

	fn := s.handlers[strings.ToLower(name)]
	return next, fn(ctx, ParseAttrs(rawAttrs), inner), true
}

func readName(s string) string {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			n++
			continue
		}
		break
	}
	return s[:n]
}

var attrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"|([\w-]+)\s*=\s*'([^']*)'|([\w-]+)\s*=\s*([^\s'"]+)|"([^"]*)"|'([^']*)'|(\S+)`)

// ParseAttrs parses a shortcode attribute string
func ParseAttrs(raw string) Attrs {
	attrs := Attrs{}
	pos := 0
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		default:
			v := m[7] + m[8] + m[9]
			attrs[strconv.Itoa(pos)] = v
			pos++
		}
	}
	return attrs
}

var captionPattern = regexp.MustCompile(`(?s)^\s*((?:<a [^>]+>\s*)?<img [^>]+>\s*(?:</a>)?)(.*)$`)

// Caption renders [caption id="" align="" width=""]<img ...> text[/caption]
// as a figure with a figcaption.
func Caption(_ context.Context, attrs Attrs, inner string) string {
	media, text := inner, attrs.Get("caption", "")
	if m := captionPattern.FindStringSubmatch(inner); m != nil {
		media = m[1]
		if strings.TrimSpace(m[2]) != "" {
			text = strings.TrimSpace(m[2])
		}
	}

	class := strings.TrimSpace("wp-caption " + attrs.Get("align", "alignnone") + " " + attrs.Get("class", ""))
	var b strings.Builder
	b.WriteString("<figure")
	if id := attrs.Get("id", ""); id != "" {
		fmt.Fprintf(&b, ` id="%s"`, html.EscapeString(id))
	}
	fmt.Fprintf(&b, ` class="%s">`, html.EscapeString(class))
	b.WriteString(media)
	if text != "" {
		fmt.Fprintf(&b, `<figcaption class="wp-caption-text">%s</figcaption>`, text)
	}
	b.WriteString("</figure>")
	return b.String()
}
