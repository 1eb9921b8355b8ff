package hiddencontent

import (
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// PostType is the host content kind of a page entity.
type PostType string

// Post type constants.
const (
	PostTypePage PostType = "page"
	PostTypePost PostType = "post"
)

// PageStatus is the publication state of a page.
type PageStatus string

// Page status constants.
const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "publish"
)

// Role is the host role of an acting user.
type Role string

// Role constants, most to least privileged.
const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleSubscriber    Role = "subscriber"
)

// Fixed names shared by the edit form, the save handler and the store.
const (
	// MetaKey is the private metadata key holding the hidden markup.
	MetaKey = "_hcfs_hidden_content"

	// NonceAction is the action the authenticity token is bound to.
	NonceAction = "hcfs_save_meta_box_data"

	// NonceField is the form field carrying the authenticity token.
	NonceField = "hcfs_meta_box_nonce"

	// ContentField is the form field carrying the submitted markup.
	ContentField = "hcfs_hidden_content"

	// PostTypeField is the form field naming the type being saved.
	PostTypeField = "post_type"
)

// Meta box placement.
const (
	PanelID       = "hcfs_meta_box"
	PanelTitle    = "Hidden Content for SEO"
	PanelContext  = "normal"
	PanelPriority = "high"
	PanelHelp     = "This content will be hidden from users and only readable by search engines."
)

// Page is the host content entity the hidden content belongs to.
type Page struct {
	ID        int64      `json:"id"`
	Type      PostType   `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	AuthorID  int64      `json:"author_id"`
	Status    PageStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsPage reports whether p is a non-nil entity of type page.
func (p *Page) IsPage() bool {
	return p != nil && p.Type == PostTypePage
}

// User is the acting user of a request.
type User struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// HiddenContent is the metadata slot attached to a page.
type HiddenContent struct {
	PageID int64  `json:"page_id"`
	Markup string `json:"markup"`
}

// Empty reports whether no hidden content is configured.
func (h HiddenContent) Empty() bool {
	return h.Markup == ""
}

// EditorSettings configures the host rich-text widget.
type EditorSettings struct {
	TextareaName string `json:"textarea_name"`
	Rows         int    `json:"textarea_rows"`
	MediaButtons bool   `json:"media_buttons"`
	Teeny        bool   `json:"teeny"`
}

// DefaultEditorSettings returns the widget configuration for the hidden content field.
func DefaultEditorSettings() EditorSettings {
	return EditorSettings{
		TextareaName: ContentField,
		Rows:         10,
		MediaButtons: true,
		Teeny:        false,
	}
}

// EditorPanel is a meta box registered on the page edit screen.
type EditorPanel struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Screen     PostType       `json:"screen"`
	Context    string         `json:"context"`
	Priority   string         `json:"priority"`
	PageID     int64          `json:"page_id"`
	NonceField string         `json:"nonce_field"`
	Nonce      string         `json:"nonce"`
	Content    string         `json:"content"`
	Editor     EditorSettings `json:"editor"`
	Help       string         `json:"help"`
}

// SaveRequest is one save event of a page, as submitted by the edit form.
type SaveRequest struct {
	PageID   int64
	User     User
	Form     url.Values
	Autosave bool
}

// SkipReason explains why a save left the stored value untouched.
type SkipReason string

// Skip reasons, in the order the guards are checked.
const (
	SkipNone         SkipReason = ""
	SkipMissingNonce SkipReason = "missing_nonce"
	SkipInvalidNonce SkipReason = "invalid_nonce"
	SkipAutosave     SkipReason = "autosave"
	SkipForbidden    SkipReason = "forbidden"
	SkipMissingField SkipReason = "missing_field"
)

// SaveResult reports the outcome of SavePage.
type SaveResult struct {
	Saved   bool       `json:"saved"`
	Skipped SkipReason `json:"skipped,omitempty"`
	Markup  string     `json:"markup,omitempty"`
}

// RenderContext identifies what the host is currently rendering.
type RenderContext struct {
	Page *Page
}

// Analyzer extension point names.
const (
	FilterFrontendContent = "rank_math/frontend/content"
	FilterAnalyzeContent  = "rank_math/analyze/content"
	FilterPrepareContent  = "rank_math/content_analysis/prepare_content"
)

// IsValid reports whether t is a known post type.
func (t PostType) IsValid() bool {
	return t == PostTypePage || t == PostTypePost
}

// MediaItem is a file uploaded through the editor's media button.
type MediaItem struct {
	ID         uuid.UUID `json:"id"`
	ObjectKey  string    `json:"object_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadMediaRequest contains parameters for a media upload
type UploadMediaRequest struct {
	FileName   string
	MimeType   string
	Reader     io.Reader
	UploadedBy int64
}
