package hiddencontent

import "context"

// Service defines the main interface of the hidden-content extension.
//
// The Extension methods are the four host-driven responsibilities; the extra
// methods expose the same behavior with explicit results for callers that
// need them (HTTP handlers, tooling, tests).
type Service interface {
	Extension

	// EditorPanel builds the meta box for page, or returns nil when the page
	// type does not carry hidden content.
	EditorPanel(ctx context.Context, page *Page, user User) (*EditorPanel, error)

	// SavePage runs the save guards and persists the sanitized markup.
	// Guard aborts are reported in SaveResult.Skipped, never as errors.
	SavePage(ctx context.Context, req SaveRequest) (SaveResult, error)

	// HiddenContent returns the stored slot for a page.
	HiddenContent(ctx context.Context, pageID int64) (HiddenContent, error)
}
