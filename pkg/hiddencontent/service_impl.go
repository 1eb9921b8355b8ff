package hiddencontent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/hidden-content/pkg/hiddencontent/sanitize"
)

// Render surfaces reported to the Recorder.
const (
	surfaceFooter   = "footer"
	surfaceFrontend = "frontend_content"
	surfaceAnalyze  = "analyze_content"
	surfacePrepare  = "prepare_content"
)

const (
	containerOpen  = `<div style="display:none;">`
	containerClose = `</div>`
	markerStart    = `<!-- wp:hidden-content-start -->`
	markerEnd      = `<!-- wp:hidden-content-end -->`
)

// service implements the Service interface
type service struct {
	repository  Repository
	tokens      TokenIssuer
	permissions PermissionChecker
	sanitizer   Sanitizer
	renderer    Renderer
	recorder    Recorder
	logger      *slog.Logger
	markers     bool
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the content store
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithTokens sets the authenticity token issuer
func WithTokens(tokens TokenIssuer) Option {
	return func(s *service) {
		s.tokens = tokens
	}
}

// WithPermissions sets the permission checker. Defaults to RolePermissions
// over the configured repository.
func WithPermissions(p PermissionChecker) Option {
	return func(s *service) {
		s.permissions = p
	}
}

// WithSanitizer sets the post-content sanitizer. Defaults to sanitize.NewPostPolicy.
func WithSanitizer(san Sanitizer) Option {
	return func(s *service) {
		s.sanitizer = san
	}
}

// WithRenderer sets the content filter chain. Defaults to PassthroughRenderer.
func WithRenderer(r Renderer) Option {
	return func(s *service) {
		s.renderer = r
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *service) {
		s.recorder = r
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithContainerMarkers wraps the footer container in start/end HTML comments.
func WithContainerMarkers(enabled bool) Option {
	return func(s *service) {
		s.markers = enabled
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if s.permissions == nil {
		s.permissions = NewRolePermissions(s.repository)
	}
	if s.sanitizer == nil {
		s.sanitizer = sanitize.NewPostPolicy()
	}
	if s.renderer == nil {
		s.renderer = NewPassthroughRenderer()
	}
	if s.recorder == nil {
		s.recorder = NoopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Editor field

func (s *service) EditorPanel(ctx context.Context, page *Page, user User) (*EditorPanel, error) {
	if !page.IsPage() {
		return nil, nil
	}

	return &EditorPanel{
		ID:         PanelID,
		Title:      PanelTitle,
		Screen:     PostTypePage,
		Context:    PanelContext,
		Priority:   PanelPriority,
		PageID:     page.ID,
		NonceField: NonceField,
		Nonce:      s.tokens.Issue(NonceAction, user.ID),
		Content:    s.storedMarkup(ctx, page.ID),
		Editor:     DefaultEditorSettings(),
		Help:       PanelHelp,
	}, nil
}

func (s *service) AddMetaBoxes(ctx context.Context, page *Page, user User) []*EditorPanel {
	panel, err := s.EditorPanel(ctx, page, user)
	if err != nil || panel == nil {
		return nil
	}
	return []*EditorPanel{panel}
}

// Persistence

func (s *service) SavePage(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if reason := s.checkSave(ctx, req); reason != SkipNone {
		s.logger.Debug("Hidden content save skipped", "page_id", req.PageID, "reason", string(reason))
		s.recorder.SaveOutcome(string(reason))
		return SaveResult{Skipped: reason}, nil
	}

	markup := s.sanitizer.SanitizeForPost(req.Form.Get(ContentField))
	if err := s.repository.SetPageMeta(ctx, req.PageID, MetaKey, markup); err != nil {
		s.recorder.SaveOutcome("error")
		return SaveResult{}, &PageError{PageID: req.PageID, Op: "save_hidden_content", Err: err}
	}

	s.logger.Info("Hidden content saved", "page_id", req.PageID, "user_id", req.User.ID, "bytes", len(markup))
	s.recorder.SaveOutcome("saved")
	return SaveResult{Saved: true, Markup: markup}, nil
}

// checkSave evaluates the save guards in order and returns the first that fails.
func (s *service) checkSave(ctx context.Context, req SaveRequest) SkipReason {
	if _, ok := req.Form[NonceField]; !ok {
		return SkipMissingNonce
	}
	if !s.tokens.Verify(req.Form.Get(NonceField), NonceAction, req.User.ID) {
		return SkipInvalidNonce
	}
	if req.Autosave {
		return SkipAutosave
	}
	if PostType(req.Form.Get(PostTypeField)) == PostTypePage {
		if !s.permissions.CanEditPage(ctx, req.User, req.PageID) {
			return SkipForbidden
		}
	}
	if _, ok := req.Form[ContentField]; !ok {
		return SkipMissingField
	}
	return SkipNone
}

func (s *service) SavePost(ctx context.Context, req SaveRequest) {
	if _, err := s.SavePage(ctx, req); err != nil {
		s.logger.Error("Failed to save hidden content", "page_id", req.PageID, "error", err)
	}
}

func (s *service) HiddenContent(ctx context.Context, pageID int64) (HiddenContent, error) {
	value, _, err := s.repository.GetPageMeta(ctx, pageID, MetaKey)
	if err != nil {
		return HiddenContent{}, &PageError{PageID: pageID, Op: "get_hidden_content", Err: err}
	}
	return HiddenContent{PageID: pageID, Markup: value}, nil
}

// Visitor-facing output

func (s *service) Footer(ctx context.Context, rc RenderContext) string {
	if !rc.Page.IsPage() {
		return ""
	}
	rendered, ok := s.renderedHiddenContent(ctx, rc.Page.ID)
	s.recorder.Rendered(surfaceFooter, ok)
	if !ok {
		return ""
	}

	out := containerOpen + rendered + containerClose
	if s.markers {
		out = markerStart + out + markerEnd
	}
	return out
}

// Analyzer filters

func (s *service) FrontendContent(ctx context.Context, rc RenderContext, content string) string {
	return s.appendHidden(ctx, surfaceFrontend, rc.Page, content)
}

func (s *service) AnalyzeContent(ctx context.Context, rc RenderContext, content string) string {
	return s.appendHidden(ctx, surfaceAnalyze, rc.Page, content)
}

func (s *service) PrepareContent(ctx context.Context, content string, page *Page) string {
	return s.appendHidden(ctx, surfacePrepare, page, content)
}

func (s *service) appendHidden(ctx context.Context, surface string, page *Page, content string) string {
	if !page.IsPage() {
		return content
	}
	rendered, ok := s.renderedHiddenContent(ctx, page.ID)
	s.recorder.Rendered(surface, ok)
	if !ok {
		return content
	}
	return content + " " + rendered
}

// renderedHiddenContent is the single fetch-and-render path shared by the
// footer and every analyzer filter. ok reports whether stored markup exists;
// it stays true when the markup renders to nothing.
func (s *service) renderedHiddenContent(ctx context.Context, pageID int64) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Hidden content render panicked", "page_id", pageID, "panic", r)
			out, ok = "", false
		}
	}()

	markup := s.storedMarkup(ctx, pageID)
	if markup == "" {
		return "", false
	}
	return s.renderer.Render(ctx, markup), true
}

// storedMarkup fetches the slot, treating any failure as no content.
func (s *service) storedMarkup(ctx context.Context, pageID int64) string {
	value, _, err := s.repository.GetPageMeta(ctx, pageID, MetaKey)
	if err != nil {
		s.logger.Warn("Failed to read hidden content", "page_id", pageID, "error", err)
		return ""
	}
	return value
}
