package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"corpsite/internal/media"
)

// maxUploadSize is the maximum allowed file upload size (10 MB).
const maxUploadSize = 10 << 20

// MediaList returns every uploaded file, newest first.
func (a *Admin) MediaList(w http.ResponseWriter, r *http.Request) {
	files, err := a.media.List(r.Context())
	if err != nil {
		mediaFailed(w, err, "Failed to list media")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// MediaUpload stores the multipart field "file" under a fresh name.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if !a.media.Configured() {
		mediaFailed(w, media.ErrNotConfigured, "")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10 MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10 MB.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10 MB.")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}

	saved, err := a.media.Save(r.Context(), header.Filename, data)
	if err != nil {
		mediaFailed(w, err, "Upload failed")
		return
	}

	slog.Info("media uploaded", "name", saved.Name, "size", saved.Size, "mime", saved.Mime)
	writeJSON(w, http.StatusOK, saved)
}

// MediaDelete removes a file by name. The route parameter is still
// percent-encoded, so it is decoded first; names with path components are
// rejected before the blob store is touched.
func (a *Admin) MediaDelete(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}
	if err := a.media.Delete(r.Context(), name); err != nil {
		mediaFailed(w, err, "Delete failed")
		return
	}

	slog.Info("media deleted", "name", name)
	writeOK(w)
}

// mediaFailed maps media errors to responses.
func mediaFailed(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, media.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid file name")
	case errors.Is(err, media.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "Unsupported file type")
	case errors.Is(err, media.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Media storage is not configured")
	default:
		slog.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
