package hiddencontent

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository is the host content store: pages plus page-scoped metadata.
type Repository interface {
	// Page operations
	CreatePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id int64) (*Page, error)
	UpdatePage(ctx context.Context, page *Page) error
	// DeletePage removes the page and every metadata slot attached to it.
	DeletePage(ctx context.Context, id int64) error
	ListPages(ctx context.Context, postType PostType) ([]*Page, error)

	// Metadata operations. GetPageMeta reports ok=false when the key was never set.
	GetPageMeta(ctx context.Context, pageID int64, key string) (value string, ok bool, err error)
	// SetPageMeta upserts; last write wins.
	SetPageMeta(ctx context.Context, pageID int64, key, value string) error
}

// TokenIssuer issues and verifies request authenticity tokens bound to an
// action name and the acting user.
type TokenIssuer interface {
	Issue(action string, userID int64) string
	Verify(token, action string, userID int64) bool
}

// PermissionChecker answers whether a user may edit a specific page.
type PermissionChecker interface {
	CanEditPage(ctx context.Context, user User, pageID int64) bool
}

// Sanitizer reduces raw markup to the safe HTML subset allowed in post content.
type Sanitizer interface {
	SanitizeForPost(raw string) string
}

// Renderer runs markup through the content filter chain, resolving
// shortcodes and similar constructs exactly as for primary content.
type Renderer interface {
	Render(ctx context.Context, raw string) string
}

// MediaLibrary stores files inserted into the hidden content field.
type MediaLibrary interface {
	Upload(ctx context.Context, req UploadMediaRequest) (*MediaItem, error)
	// Open returns the item and its bytes. The caller closes the reader.
	Open(ctx context.Context, id uuid.UUID) (*MediaItem, io.ReadCloser, error)
}

// BlobStore defines the interface for object storage backends
type BlobStore interface {
	Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error
	// Download returns ErrObjectNotFound for unknown keys.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectKey string) error
}

// Extension is the explicit registration surface of the host: one method per
// extension point. Hooks.Register wires an Extension into a dispatcher.
type Extension interface {
	// AddMetaBoxes returns the panels to add to the edit screen of page.
	AddMetaBoxes(ctx context.Context, page *Page, user User) []*EditorPanel
	// SavePost observes a save; it has no result.
	SavePost(ctx context.Context, req SaveRequest)
	// Footer returns markup to emit late in the page render.
	Footer(ctx context.Context, rc RenderContext) string
	// FrontendContent, AnalyzeContent and PrepareContent transform the text
	// passed through the analyzer filters of the same name.
	FrontendContent(ctx context.Context, rc RenderContext, content string) string
	AnalyzeContent(ctx context.Context, rc RenderContext, content string) string
	PrepareContent(ctx context.Context, content string, page *Page) string
}

// Recorder receives counters about saves and renders. The metrics subpackage
// provides a Prometheus implementation.
type Recorder interface {
	SaveOutcome(outcome string)
	Rendered(surface string, injected bool)
}
