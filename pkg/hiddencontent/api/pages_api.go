package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// CreatePageRequest is the request body for creating a page
type CreatePageRequest struct {
	ID       int64  `json:"id,omitempty"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID int64  `json:"author_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

// PageResponse is the response body for a page
type PageResponse struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AuthorID      int64     `json:"author_id"`
	Status        string    `json:"status"`
	HiddenContent string    `json:"hidden_content,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func pageResponse(page *hiddencontent.Page) PageResponse {
	return PageResponse{
		ID:        page.ID,
		Type:      string(page.Type),
		Title:     page.Title,
		Body:      page.Body,
		AuthorID:  page.AuthorID,
		Status:    string(page.Status),
		CreatedAt: page.CreatedAt,
		UpdatedAt: page.UpdatedAt,
	}
}

// CreatePage creates a host page or post. Only editors and administrators
// may create entities for another author.
func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	postType := hiddencontent.PostType(req.Type)
	if !postType.IsValid() {
		s.writeServiceError(w, r, hiddencontent.ErrInvalidPageType)
		return
	}
	if user.Role == hiddencontent.RoleSubscriber {
		writeError(w, r, http.StatusForbidden, "forbidden", "Not allowed to create pages")
		return
	}

	if req.ID != 0 && user.Role != hiddencontent.RoleAdministrator {
		writeError(w, r, http.StatusForbidden, "forbidden", "Only administrators may choose page IDs")
		return
	}

	authorID := req.AuthorID
	if authorID == 0 {
		authorID = user.ID
	}
	if authorID != user.ID && user.Role != hiddencontent.RoleAdministrator && user.Role != hiddencontent.RoleEditor {
		writeError(w, r, http.StatusForbidden, "forbidden", "Not allowed to create pages for other authors")
		return
	}

	status := hiddencontent.PageStatus(req.Status)
	if status == "" {
		status = hiddencontent.PageStatusDraft
	}

	page := &hiddencontent.Page{
		ID:       req.ID,
		Type:     postType,
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: authorID,
		Status:   status,
	}
	if err := s.repo.CreatePage(r.Context(), page); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("Page created", "page_id", page.ID, "type", page.Type, "author_id", page.AuthorID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, pageResponse(page))
}

// GetPage returns a page together with its hidden content
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pageIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid_page_id", "Invalid page ID")
		return
	}

	ctx := r.Context()
	page, err := s.repo.GetPage(ctx, pageID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := pageResponse(page)
	hidden, err := s.service.HiddenContent(ctx, pageID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp.HiddenContent = hidden.Markup

	render.JSON(w, r, resp)
}

// ListPages lists pages, optionally filtered by ?type=
func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	postType := hiddencontent.PostType(r.URL.Query().Get("type"))
	if postType != "" && !postType.IsValid() {
		s.writeServiceError(w, r, hiddencontent.ErrInvalidPageType)
		return
	}

	pages, err := s.repo.ListPages(r.Context(), postType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := make([]PageResponse, 0, len(pages))
	for _, page := range pages {
		resp = append(resp, pageResponse(page))
	}
	render.JSON(w, r, resp)
}

// DeletePage removes a page and its metadata
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pageIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid_page_id", "Invalid page ID")
		return
	}
	user, _ := UserFromContext(r.Context())

	ctx := r.Context()
	if _, err := s.repo.GetPage(ctx, pageID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !s.perms.CanEditPage(ctx, user, pageID) {
		writeError(w, r, http.StatusForbidden, "forbidden", "Not allowed to delete this page")
		return
	}

	if err := s.repo.DeletePage(ctx, pageID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("Page deleted", "page_id", pageID, "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
