package hiddencontent

import (
	"context"
	"log/slog"
	"strings"
)

// Hooks is the host's extension-point dispatcher. Each field lists the
// callbacks fired at one point of the request lifecycle, in registration order.
type Hooks struct {
	// Edit screen
	AddMetaBoxes []AddMetaBoxesHook

	// Save request
	SavePost []SavePostHook

	// Page render, after main content
	Footer []FooterHook

	// Analyzer filters keyed by filter name
	Filters map[string][]ContentFilterHook
}

// Hook context carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// AddMetaBoxesHook returns panels to add to the edit screen of page
type AddMetaBoxesHook func(hctx *HookContext, page *Page, user User) []*EditorPanel

// SavePostHook observes a save request
type SavePostHook func(hctx *HookContext, req SaveRequest)

// FooterHook returns markup emitted at the end of a page render
type FooterHook func(hctx *HookContext, rc RenderContext) string

// ContentFilterHook transforms analyzer text. page is the current render
// target for front-end filters and the entity under analysis for admin ones.
type ContentFilterHook func(hctx *HookContext, content string, page *Page) string

// NewHooks creates an empty dispatcher
func NewHooks() *Hooks {
	return &Hooks{
		Filters: make(map[string][]ContentFilterHook),
	}
}

// Register wires every extension point of ext into h.
func (h *Hooks) Register(ext Extension) {
	h.AddMetaBoxes = append(h.AddMetaBoxes, func(hctx *HookContext, page *Page, user User) []*EditorPanel {
		return ext.AddMetaBoxes(hctx.Context, page, user)
	})
	h.SavePost = append(h.SavePost, func(hctx *HookContext, req SaveRequest) {
		ext.SavePost(hctx.Context, req)
	})
	h.Footer = append(h.Footer, func(hctx *HookContext, rc RenderContext) string {
		return ext.Footer(hctx.Context, rc)
	})
	h.AddFilter(FilterFrontendContent, func(hctx *HookContext, content string, page *Page) string {
		return ext.FrontendContent(hctx.Context, RenderContext{Page: page}, content)
	})
	h.AddFilter(FilterAnalyzeContent, func(hctx *HookContext, content string, page *Page) string {
		return ext.AnalyzeContent(hctx.Context, RenderContext{Page: page}, content)
	})
	h.AddFilter(FilterPrepareContent, func(hctx *HookContext, content string, page *Page) string {
		return ext.PrepareContent(hctx.Context, content, page)
	})
}

// AddFilter appends a content filter under name
func (h *Hooks) AddFilter(name string, hook ContentFilterHook) {
	if h.Filters == nil {
		h.Filters = make(map[string][]ContentFilterHook)
	}
	h.Filters[name] = append(h.Filters[name], hook)
}

// HasFilter reports whether any callback is registered under name
func (h *Hooks) HasFilter(name string) bool {
	return len(h.Filters[name]) > 0
}

// Hook execution helpers

// ExecuteAddMetaBoxes collects the panels of every AddMetaBoxes hook
func (h *Hooks) ExecuteAddMetaBoxes(ctx context.Context, page *Page, user User) []*EditorPanel {
	if len(h.AddMetaBoxes) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	var panels []*EditorPanel
	for _, hook := range h.AddMetaBoxes {
		panels = append(panels, hook(hctx, page, user)...)
		if hctx.StopChain {
			break
		}
	}
	return panels
}

// ExecuteSavePost runs all SavePost hooks
func (h *Hooks) ExecuteSavePost(ctx context.Context, req SaveRequest) {
	if len(h.SavePost) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.SavePost {
		hook(hctx, req)
		if hctx.StopChain {
			break
		}
	}
}

// ExecuteFooter concatenates the output of all Footer hooks
func (h *Hooks) ExecuteFooter(ctx context.Context, rc RenderContext) string {
	if len(h.Footer) == 0 {
		return ""
	}

	hctx := NewHookContext(ctx)
	var b strings.Builder
	for _, hook := range h.Footer {
		b.WriteString(hook(hctx, rc))
		if hctx.StopChain {
			break
		}
	}
	return b.String()
}

// ApplyFilter passes content through every filter registered under name,
// each receiving the previous one's result
func (h *Hooks) ApplyFilter(ctx context.Context, name, content string, page *Page) string {
	hooks := h.Filters[name]
	if len(hooks) == 0 {
		return content
	}

	hctx := NewHookContext(ctx)
	for _, hook := range hooks {
		content = hook(hctx, content, page)
		if hctx.StopChain {
			break
		}
	}
	return content
}

// Merge appends every hook of other after the hooks already in h.
func (h *Hooks) Merge(other *Hooks) {
	if other == nil {
		return
	}
	h.AddMetaBoxes = append(h.AddMetaBoxes, other.AddMetaBoxes...)
	h.SavePost = append(h.SavePost, other.SavePost...)
	h.Footer = append(h.Footer, other.Footer...)
	for name, hooks := range other.Filters {
		for _, hook := range hooks {
			h.AddFilter(name, hook)
		}
	}
}

// Common hook implementations

// LoggingHook logs every save request and analyzer filter invocation
func LoggingHook(logger *slog.Logger) *Hooks {
	h := NewHooks()
	h.SavePost = []SavePostHook{
		func(hctx *HookContext, req SaveRequest) {
			logger.Debug("Save request", "page_id", req.PageID, "user_id", req.User.ID, "autosave", req.Autosave)
		},
	}
	for _, name := range []string{FilterFrontendContent, FilterAnalyzeContent, FilterPrepareContent} {
		name := name
		h.AddFilter(name, func(hctx *HookContext, content string, page *Page) string {
			var pageID int64
			if page != nil {
				pageID = page.ID
			}
			logger.Debug("Filter applied", "filter", name, "page_id", pageID, "length", len(content))
			return content
		})
	}
	return h
}

// MetricsHook counts hook dispatches per extension point
func MetricsHook(metrics interface {
	HookFired(point string)
}) *Hooks {
	h := NewHooks()
	h.AddMetaBoxes = []AddMetaBoxesHook{
		func(hctx *HookContext, page *Page, user User) []*EditorPanel {
			metrics.HookFired("add_meta_boxes")
			return nil
		},
	}
	h.SavePost = []SavePostHook{
		func(hctx *HookContext, req SaveRequest) {
			metrics.HookFired("save_post")
		},
	}
	h.Footer = []FooterHook{
		func(hctx *HookContext, rc RenderContext) string {
			metrics.HookFired("footer")
			return ""
		},
	}
	for _, name := range []string{FilterFrontendContent, FilterAnalyzeContent, FilterPrepareContent} {
		name := name
		h.AddFilter(name, func(hctx *HookContext, content string, page *Page) string {
			metrics.HookFired(name)
			return content
		})
	}
	return h
}
