package hiddencontent_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

func TestHooks_RegisterWiresEveryExtensionPoint(t *testing.T) {
	svc, repo := newService(t)
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "<p>Secret</p>"))

	h := hiddencontent.NewHooks()
	h.Register(svc)

	assert.Len(t, h.AddMetaBoxes, 1)
	assert.Len(t, h.SavePost, 1)
	assert.Len(t, h.Footer, 1)
	for _, name := range []string{
		hiddencontent.FilterFrontendContent,
		hiddencontent.FilterAnalyzeContent,
		hiddencontent.FilterPrepareContent,
	} {
		assert.True(t, h.HasFilter(name), name)
		assert.Equal(t, "Body <p>Secret</p>", h.ApplyFilter(bgCtx, name, "Body", page42), name)
	}
	assert.False(t, h.HasFilter("the_content"))
	assert.Equal(t, "Body", h.ApplyFilter(bgCtx, "the_content", "Body", page42))

	panels := h.ExecuteAddMetaBoxes(bgCtx, page42, admin)
	require.Len(t, panels, 1)
	assert.Equal(t, hiddencontent.PanelID, panels[0].ID)

	assert.Equal(t, `<div style="display:none;"><p>Secret</p></div>`,
		h.ExecuteFooter(bgCtx, hiddencontent.RenderContext{Page: page42}))

	h.ExecuteSavePost(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("<i>new</i>")})
	hidden, err := svc.HiddenContent(bgCtx, 42)
	require.NoError(t, err)
	assert.Equal(t, "<i>new</i>", hidden.Markup)
}

func TestHooks_FilterChainOrder(t *testing.T) {
	h := hiddencontent.NewHooks()
	h.AddFilter("f", func(hctx *hiddencontent.HookContext, content string, page *hiddencontent.Page) string {
		return content + "a"
	})
	h.AddFilter("f", func(hctx *hiddencontent.HookContext, content string, page *hiddencontent.Page) string {
		hctx.StopChain = true
		return content + "b"
	})
	h.AddFilter("f", func(hctx *hiddencontent.HookContext, content string, page *hiddencontent.Page) string {
		return content + "c"
	})

	assert.Equal(t, "xab", h.ApplyFilter(bgCtx, "f", "x", nil))
}

func TestHooks_FooterConcatenates(t *testing.T) {
	h := hiddencontent.NewHooks()
	h.Footer = append(h.Footer,
		func(*hiddencontent.HookContext, hiddencontent.RenderContext) string { return "<one/>" },
		func(*hiddencontent.HookContext, hiddencontent.RenderContext) string { return "<two/>" },
	)

	assert.Equal(t, "<one/><two/>", h.ExecuteFooter(bgCtx, hiddencontent.RenderContext{Page: page42}))
	assert.Empty(t, hiddencontent.NewHooks().ExecuteFooter(bgCtx, hiddencontent.RenderContext{}))
}

type countingMetrics struct {
	fired map[string]int
}

func (m *countingMetrics) HookFired(point string) { m.fired[point]++ }

func TestHooks_MergeWithMetricsAndLogging(t *testing.T) {
	svc, repo := newService(t)
	require.NoError(t, repo.SetPageMeta(bgCtx, 42, hiddencontent.MetaKey, "x"))

	m := &countingMetrics{fired: map[string]int{}}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := hiddencontent.NewHooks()
	h.Merge(hiddencontent.MetricsHook(m))
	h.Merge(hiddencontent.LoggingHook(logger))
	h.Merge(nil)
	h.Register(svc)

	assert.Equal(t, "Body x", h.ApplyFilter(bgCtx, hiddencontent.FilterAnalyzeContent, "Body", page42))
	assert.Equal(t, `<div style="display:none;">x</div>`, h.ExecuteFooter(bgCtx, hiddencontent.RenderContext{Page: page42}))
	assert.Len(t, h.ExecuteAddMetaBoxes(bgCtx, page42, admin), 1)
	h.ExecuteSavePost(bgCtx, hiddencontent.SaveRequest{PageID: 42, User: admin, Form: saveForm("y")})

	assert.Equal(t, 1, m.fired[hiddencontent.FilterAnalyzeContent])
	assert.Equal(t, 1, m.fired["footer"])
	assert.Equal(t, 1, m.fired["add_meta_boxes"])
	assert.Equal(t, 1, m.fired["save_post"])
	assert.True(t, strings.Contains(logs.String(), "Filter applied"))
	assert.Contains(t, logs.String(), "Save request")
}
