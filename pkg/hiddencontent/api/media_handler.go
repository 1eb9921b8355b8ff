package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
	"github.com/tendant/hidden-content/pkg/hiddencontent/media"
)

// UploadMedia accepts a multipart "file" field from the editor's media button
func (s *Server) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeError(w, r, http.StatusNotFound, "media_disabled", "Media library is not configured")
		return
	}

	user, _ := UserFromContext(r.Context())
	if !canUpload(user.Role) {
		writeError(w, r, http.StatusForbidden, "forbidden", "Not allowed to upload files")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_upload", "Missing file field")
		return
	}
	defer file.Close()

	item, err := s.media.Upload(r.Context(), hiddencontent.UploadMediaRequest{
		FileName:   header.Filename,
		MimeType:   header.Header.Get("Content-Type"),
		Reader:     file,
		UploadedBy: user.ID,
	})
	if err != nil {
		s.logger.Warn("Media upload failed", "user_id", user.ID, "file_name", header.Filename, "error", err)
		writeError(w, r, http.StatusBadRequest, "upload_failed", err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// ServeMedia streams a media item
func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.NotFound(w, r)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "mediaID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	item, rc, err := s.media.Open(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", item.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(item.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if !media.Inline(item.MimeType) {
		params := map[string]string{}
		if item.FileName != "" {
			params["filename"] = item.FileName
		}
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", params))
		w.Header().Set("Content-Security-Policy", "sandbox")
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("Media stream interrupted", "media_id", id, "error", err)
	}
}
