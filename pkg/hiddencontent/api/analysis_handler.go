package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// analysisFilters maps URL names to host filter names
var analysisFilters = map[string]string{
	"frontend_content": hiddencontent.FilterFrontendContent,
	"analyze_content":  hiddencontent.FilterAnalyzeContent,
	"prepare_content":  hiddencontent.FilterPrepareContent,
}

var errUnknownFilter = errors.New("unknown filter")

// AnalysisRequest is the request body for an analyzer filter run
type AnalysisRequest struct {
	PageID  int64  `json:"page_id"`
	Content string `json:"content"`
}

// AnalysisResponse carries the filtered text
type AnalysisResponse struct {
	Filter  string `json:"filter"`
	Content string `json:"content"`
}

// Analyze passes content through one analyzer filter, the way the SEO
// analyzer collects the text it scores. page_id 0 means no current page.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	filter, ok := analysisFilters[chi.URLParam(r, "filter")]
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown_filter", errUnknownFilter.Error())
		return
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	var page *hiddencontent.Page
	if req.PageID != 0 {
		var err error
		page, err = s.repo.GetPage(ctx, req.PageID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	render.JSON(w, r, AnalysisResponse{
		Filter:  filter,
		Content: s.hooks.ApplyFilter(ctx, filter, req.Content, page),
	})
}
