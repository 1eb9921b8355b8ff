package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	}})
}

// writeServiceError maps domain errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, hiddencontent.ErrPageNotFound):
		writeError(w, r, http.StatusNotFound, "page_not_found", "Page not found")
	case errors.Is(err, hiddencontent.ErrPageExists):
		writeError(w, r, http.StatusConflict, "page_exists", "Page already exists")
	case errors.Is(err, hiddencontent.ErrMediaNotFound):
		writeError(w, r, http.StatusNotFound, "media_not_found", "Media not found")
	case errors.Is(err, hiddencontent.ErrInvalidPageType):
		writeError(w, r, http.StatusBadRequest, "invalid_page_type", err.Error())
	default:
		s.logger.Error("Request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "An internal server error occurred")
	}
}

// pageIDParam parses the {pageID} URL parameter
func pageIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pageID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
