package hiddencontent_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
	"github.com/tendant/hidden-content/pkg/hiddencontent/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent/repo/memory"
)

// staticTokens accepts exactly one token per user.
type staticTokens struct{}

func (staticTokens) Issue(action string, userID int64) string {
	return action + "-valid"
}

func (staticTokens) Verify(token, action string, userID int64) bool {
	return token == action+"-valid"
}

type recordedRender struct {
	surface  string
	injected bool
}

type fakeRecorder struct {
	saves   []string
	renders []recordedRender
}

func (r *fakeRecorder) SaveOutcome(outcome string) { r.saves = append(r.saves, outcome) }
func (r *fakeRecorder) Rendered(surface string, injected bool) {
	r.renders = append(r.renders, recordedRender{surface, injected})
}

// brokenMetaRepo fails every metadata operation.
type brokenMetaRepo struct {
	*memory.Repository
}

var errStore = errors.New("store unavailable")

func (brokenMetaRepo) GetPageMeta(context.Context, int64, string) (string, bool, error) {
	return "", false, errStore
}

func (brokenMetaRepo) SetPageMeta(context.Context, int64, string, string) error {
	return errStore
}

var (
	admin      = hiddencontent.User{ID: 1, Role: hiddencontent.RoleAdministrator}
	author     = hiddencontent.User{ID: 5, Role: hiddencontent.RoleAuthor}
	validNonce = hiddencontent.NonceAction + "-valid"
	page42     = &hiddencontent.Page{ID: 42, Type: hiddencontent.PostTypePage, AuthorID: 1}
	post7      = &hiddencontent.Page{ID: 7, Type: hiddencontent.PostTypePost, AuthorID: 1}
	bgCtx      = context.Background()
)

func newService(t *testing.T, opts ...hiddencontent.Option) (hiddencontent.Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	for _, p := range []*hiddencontent.Page{page42, post7} {
		cp := *p
		require.NoError(t, repo.CreatePage(bgCtx, &cp))
	}

	base := []hiddencontent.Option{
		hiddencontent.WithRepository(repo),
		hiddencontent.WithTokens(staticTokens{}),
	}
	svc, err := hiddencontent.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc, repo
}

func saveForm(content string) url.Values {
	return url.Values{
		hiddencontent.NonceField:    {validNonce},
		hiddencontent.PostTypeField: {"page"},
		hiddencontent.ContentField:  {content},
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := hiddencontent.New(hiddencontent.WithTokens(staticTokens{}))
	assert.Error(t, err)

	_, err = hiddencontent.New(hiddencontent.WithRepository(memory.New()))
	assert.Error(t, err)
}

func TestEditorPanel(t *testing.T) {
	svc, repo := newService(t)
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "<p>Secret</p>"))

	panel, err := svc.EditorPanel(bgCtx, page42, admin)
	require.NoError(t, err)
	require.NotNil(t, panel)

	assert.Equal(t, "hcfs_meta_box", panel.ID)
	assert.Equal(t, "Hidden Content for SEO", panel.Title)
	assert.Equal(t, hiddencontent.PostTypePage, panel.Screen)
	assert.Equal(t, "normal", panel.Context)
	assert.Equal(t, "high", panel.Priority)
	assert.Equal(t, "hcfs_meta_box_nonce", panel.NonceField)
	assert.Equal(t, validNonce, panel.Nonce)
	assert.Equal(t, "<p>Secret</p>", panel.Content)
	assert.Equal(t, hiddencontent.EditorSettings{
		TextareaName: "hcfs_hidden_content",
		Rows:         10,
		MediaButtons: true,
		Teeny:        false,
	}, panel.Editor)
	assert.NotEmpty(t, panel.Help)
}

func TestEditorPanel_EmptyAndScoped(t *testing.T) {
	svc, _ := newService(t)

	panel, err := svc.EditorPanel(bgCtx, page42, admin)
	require.NoError(t, err)
	require.NotNil(t, panel)
	assert.Empty(t, panel.Content)

	panel, err = svc.EditorPanel(bgCtx, post7, admin)
	require.NoError(t, err)
	assert.Nil(t, panel)

	assert.Empty(t, svc.AddMetaBoxes(bgCtx, post7, admin))
	assert.Len(t, svc.AddMetaBoxes(bgCtx, page42, admin), 1)
}

func TestSavePage_RoundTrip(t *testing.T) {
	rec := &fakeRecorder{}
	svc, _ := newService(t, hiddencontent.WithRecorder(rec))

	res, err := svc.SavePage(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("<b>x</b>")})
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Equal(t, "<b>x</b>", res.Markup)

	panel, err := svc.EditorPanel(bgCtx, page42, admin)
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>", panel.Content)
	assert.Equal(t, []string{"saved"}, rec.saves)
}

func TestSavePage_Sanitizes(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.SavePage(bgCtx, hiddencontent.SaveRequest{
		PageID: 42,
		User:   admin,
		Form:   saveForm(`<p onclick="steal()">Hi<script>alert(1)</script></p>`),
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi</p>", res.Markup)
}

func TestSavePage_Guards(t *testing.T) {
	tests := []struct {
		name string
		req  hiddencontent.SaveRequest
		want hiddencontent.SkipReason
	}{
		{
			name: "missing nonce",
			req: hiddencontent.SaveRequest{PageID: 42, User: admin, Form: url.Values{
				hiddencontent.PostTypeField: {"page"}, hiddencontent.ContentField: {"new"},
			}},
			want: hiddencontent.SkipMissingNonce,
		},
		{
			name: "invalid nonce",
			req: hiddencontent.SaveRequest{PageID: 42, User: admin, Form: url.Values{
				hiddencontent.NonceField: {"forged"}, hiddencontent.PostTypeField: {"page"}, hiddencontent.ContentField: {"new"},
			}},
			want: hiddencontent.SkipInvalidNonce,
		},
		{
			name: "post type without nonce",
			req: hiddencontent.SaveRequest{PageID: 42, User: author, Form: url.Values{
				hiddencontent.PostTypeField: {"post"}, hiddencontent.ContentField: {"new"},
			}},
			want: hiddencontent.SkipMissingNonce,
		},
		{
			name: "post type with forged nonce",
			req: hiddencontent.SaveRequest{PageID: 42, User: author, Form: url.Values{
				hiddencontent.NonceField: {"forged"}, hiddencontent.PostTypeField: {"post"}, hiddencontent.ContentField: {"new"},
			}},
			want: hiddencontent.SkipInvalidNonce,
		},
		{
			name: "autosave",
			req:  hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("new"), Autosave: true},
			want: hiddencontent.SkipAutosave,
		},
		{
			name: "author of another page",
			req:  hiddencontent.SaveRequest{PageID: 42, User: author, Form: saveForm("new")},
			want: hiddencontent.SkipForbidden,
		},
		{
			name: "field absent",
			req: hiddencontent.SaveRequest{PageID: 42, User: admin, Form: url.Values{
				hiddencontent.NonceField: {validNonce}, hiddencontent.PostTypeField: {"page"},
			}},
			want: hiddencontent.SkipMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			svc, repo := newService(t, hiddencontent.WithRecorder(rec))
			require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "old"))

			res, err := svc.SavePage(bgCtx, tt.req)
			require.NoError(t, err)
			assert.False(t, res.Saved)
			assert.Equal(t, tt.want, res.Skipped)
			assert.Equal(t, []string{string(tt.want)}, rec.saves)

			hidden, err := svc.HiddenContent(bgCtx, 42)
			require.NoError(t, err)
			assert.Equal(t, "old", hidden.Markup)
		})
	}
}

func TestSavePage_PermissionOnlyCheckedForPages(t *testing.T) {
	svc, _ := newService(t)

	// The author does not own page 42, but the submitted type is not "page",
	// so no permission check applies.
	form := saveForm("new")
	form.Set(hiddencontent.PostTypeField, "post")

	res, err := svc.SavePage(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: author, Form: form})
	require.NoError(t, err)
	assert.True(t, res.Saved)
}

func TestSavePage_EmptyOverwrites(t *testing.T) {
	svc, repo := newService(t)
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "old"))

	res, err := svc.SavePage(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("")})
	require.NoError(t, err)
	assert.True(t, res.Saved)

	value, ok, err := repo.GetPageMeta(bgCtx, 42, hiddencontent.MetaKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)

	assert.Empty(t, svc.Footer(bgCtx, hiddencontent.RenderContext{Page: page42}))
	assert.Equal(t, "Body", svc.AnalyzeContent(bgCtx, hiddencontent.RenderContext{Page: page42}, "Body"))
}

func TestSavePage_StoreError(t *testing.T) {
	rec := &fakeRecorder{}
	repo := brokenMetaRepo{memory.New()}
	svc, err := hiddencontent.New(
		hiddencontent.WithRepository(repo),
		hiddencontent.WithTokens(staticTokens{}),
		hiddencontent.WithPermissions(allowAll{}),
		hiddencontent.WithRecorder(rec),
	)
	require.NoError(t, err)

	_, err = svc.SavePage(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)

	var pageErr *hiddencontent.PageError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, int64(42), pageErr.PageID)
	assert.Equal(t, []string{"error"}, rec.saves)

	// SavePost swallows the error
	assert.NotPanics(t, func() {
		svc.SavePost(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("x")})
	})

	// Rendering degrades to no hidden content
	assert.Empty(t, svc.Footer(bgCtx, hiddencontent.RenderContext{Page: page42}))
	assert.Equal(t, "Body", svc.PrepareContent(bgCtx, "Body", page42))
}

type allowAll struct{}

func (allowAll) CanEditPage(context.Context, hiddencontent.User, int64) bool { return true }

func TestFooter(t *testing.T) {
	svc, repo := newService(t)
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "<p>Secret</p>"))
	require.NoError(t, repo.SetPageMeta(bgCtx, 7, hiddencontent.MetaKey, "<p>Secret</p>"))

	assert.Equal(t, `<div style="display:none;"><p>Secret</p></div>`,
		svc.Footer(bgCtx, hiddencontent.RenderContext{Page: page42}))
	assert.Empty(t, svc.Footer(bgCtx, hiddencontent.RenderContext{Page: post7}))
	assert.Empty(t, svc.Footer(bgCtx, hiddencontent.RenderContext{}))
}

func TestFooter_ContainerMarkers(t *testing.T) {
	svc, repo := newService(t, hiddencontent.WithContainerMarkers(true))
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "x"))

	assert.Equal(t,
		`<!-- wp:hidden-content-start --><div style="display:none;">x</div><!-- wp:hidden-content-end -->`,
		svc.Footer(bgCtx, hiddencontent.RenderContext{Page: page42}))
}

func TestAnalyzerFilters(t *testing.T) {
	rec := &fakeRecorder{}
	svc, repo := newService(t, hiddencontent.WithRecorder(rec))
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "<p>Secret</p>"))
	require.NoError(t, repo.SetPageMeta(bgCtx, 7, hiddencontent.MetaKey, "<p>Secret</p>"))

	rc := hiddencontent.RenderContext{Page: page42}
	assert.Equal(t, "Body <p>Secret</p>", svc.AnalyzeContent(bgCtx, rc, "Body"))
	assert.Equal(t, "Body <p>Secret</p>", svc.FrontendContent(bgCtx, rc, "Body"))
	assert.Equal(t, "Body <p>Secret</p>", svc.PrepareContent(bgCtx, "Body", page42))
	assert.Equal(t, " <p>Secret</p>", svc.AnalyzeContent(bgCtx, rc, ""))

	postRC := hiddencontent.RenderContext{Page: post7}
	assert.Equal(t, "Body", svc.AnalyzeContent(bgCtx, postRC, "Body"))
	assert.Equal(t, "Body", svc.FrontendContent(bgCtx, hiddencontent.RenderContext{}, "Body"))
	assert.Equal(t, "Body", svc.PrepareContent(bgCtx, "Body", nil))

	assert.Equal(t, []recordedRender{
		{"analyze_content", true},
		{"frontend_content", true},
		{"prepare_content", true},
		{"analyze_content", true},
	}, rec.renders)
}

func TestRenderedContentConsistentAcrossSurfaces(t *testing.T) {
	sc := render.NewShortcodes()
	sc.Add("year", func(context.Context, render.Attrs, string) string { return "2024" })
	chain := render.NewChain().Add("shortcodes", sc.Apply)

	svc, repo := newService(t, hiddencontent.WithRenderer(chain))
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "Since [year]"))

	rc := hiddencontent.RenderContext{Page: page42}
	assert.Equal(t, `<div style="display:none;">Since 2024</div>`, svc.Footer(bgCtx, rc))
	assert.Equal(t, "Body Since 2024", svc.FrontendContent(bgCtx, rc, "Body"))
	assert.Equal(t, "Body Since 2024", svc.AnalyzeContent(bgCtx, rc, "Body"))
	assert.Equal(t, "Body Since 2024", svc.PrepareContent(bgCtx, "Body", page42))
}

func TestStoredMarkupRenderingToNothing(t *testing.T) {
	// Stored markup whose shortcodes expand to nothing still emits the container.
	sc := render.NewShortcodes()
	sc.Add("gallery", func(context.Context, render.Attrs, string) string { return "" })
	chain := render.NewChain().Add("shortcodes", sc.Apply)

	rec := &fakeRecorder{}
	svc, repo := newService(t, hiddencontent.WithRenderer(chain), hiddencontent.WithRecorder(rec))
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "[gallery]"))

	rc := hiddencontent.RenderContext{Page: page42}
	assert.Equal(t, `<div style="display:none;"></div>`, svc.Footer(bgCtx, rc))
	assert.Equal(t, "Body ", svc.AnalyzeContent(bgCtx, rc, "Body"))
	assert.Equal(t, []recordedRender{{"footer", true}, {"analyze_content", true}}, rec.renders)
}

type panicRenderer struct{}

func (panicRenderer) Render(context.Context, string) string { panic("boom") }

func TestFooter_RendererPanicDegrades(t *testing.T) {
	svc, repo := newService(t, hiddencontent.WithRenderer(panicRenderer{}))
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "x"))

	assert.NotPanics(t, func() {
		assert.Empty(t, svc.Footer(bgCtx, hiddencontent.RenderContext{Page: page42}))
		assert.Equal(t, "Body", svc.AnalyzeContent(bgCtx, hiddencontent.RenderContext{Page: page42}, "Body"))
	})
}
