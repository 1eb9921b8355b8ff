package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// ViewPage renders a published page for visitors, emitting footer hook
// output just before the closing body tag.
func (s *Server) ViewPage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pageIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	page, err := s.repo.GetPage(ctx, pageID)
	if errors.Is(err, hiddencontent.ErrPageNotFound) || (err == nil && page.Status != hiddencontent.PageStatusPublished) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load page", "page_id", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view := pageView{
		ID:     page.ID,
		Type:   string(page.Type),
		Title:  page.Title,
		Body:   template.HTML(s.renderer.Render(ctx, page.Body)),
		Footer: template.HTML(s.hooks.ExecuteFooter(ctx, hiddencontent.RenderContext{Page: page})),
	}

	s.writeHTML(w, pageTemplate, view)
}

// EditPage renders the admin edit screen with every registered meta box
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pageIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, _ := UserFromContext(r.Context())

	ctx := r.Context()
	page, err := s.repo.GetPage(ctx, pageID)
	if errors.Is(err, hiddencontent.ErrPageNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load page", "page_id", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !s.perms.CanEditPage(ctx, user, pageID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	view := editView{
		Page: pageFields{
			ID:    page.ID,
			Type:  string(page.Type),
			Title: page.Title,
			Body:  page.Body,
		},
		Saved: r.URL.Query().Get("saved") == "1",
	}
	for _, panel := range s.hooks.ExecuteAddMetaBoxes(ctx, page, user) {
		view.Panels = append(view.Panels, panelView{
			ID:         panel.ID,
			Title:      panel.Title,
			Context:    panel.Context,
			Priority:   panel.Priority,
			NonceField: panel.NonceField,
			Nonce:      panel.Nonce,
			Content:    panel.Content,
			Help:       panel.Help,
			Editor: editorView{
				TextareaName: panel.Editor.TextareaName,
				Rows:         panel.Editor.Rows,
				MediaButtons: panel.Editor.MediaButtons,
				Teeny:        panel.Editor.Teeny,
			},
		})
	}

	s.writeHTML(w, editTemplate, view)
}

// SavePage applies the edit form: host fields first, then the SavePost hooks.
// Extensions apply their own guards to the submitted form.
func (s *Server) SavePage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pageIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, _ := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	page, err := s.repo.GetPage(ctx, pageID)
	if errors.Is(err, hiddencontent.ErrPageNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load page", "page_id", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !s.perms.CanEditPage(ctx, user, pageID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	autosave := r.PostForm.Get("autosave") == "1"
	if !autosave && (r.PostForm.Has("post_title") || r.PostForm.Has("content")) {
		if r.PostForm.Has("post_title") {
			page.Title = r.PostForm.Get("post_title")
		}
		if r.PostForm.Has("content") {
			page.Body = r.PostForm.Get("content")
		}
		if err := s.repo.UpdatePage(ctx, page); err != nil {
			s.logger.Error("Failed to update page", "page_id", pageID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	s.hooks.ExecuteSavePost(ctx, hiddencontent.SaveRequest{
		PageID:   pageID,
		User:     user,
		Form:     r.PostForm,
		Autosave: autosave,
	})

	http.Redirect(w, r, fmt.Sprintf("/admin/pages/%d/edit?saved=1", pageID), http.StatusSeeOther)
}

func (s *Server) writeHTML(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render template", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
