package hiddencontent

import "context"

// PassthroughRenderer returns markup unchanged. It stands in for the content
// filter chain when a host has none.
type PassthroughRenderer struct{}

// NewPassthroughRenderer creates a renderer that does nothing
func NewPassthroughRenderer() Renderer {
	return PassthroughRenderer{}
}

// Render returns raw unchanged
func (PassthroughRenderer) Render(_ context.Context, raw string) string {
	return raw
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

// SaveOutcome does nothing
func (NoopRecorder) SaveOutcome(string) {}

// Rendered does nothing
func (NoopRecorder) Rendered(string, bool) {}
