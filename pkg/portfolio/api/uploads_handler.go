package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
)

// multipartOverhead is allowed on top of the image limit for form fields
// and part headers.
const multipartOverhead = 64 << 10

// UploadsHandler accepts image uploads from the admin panel
type UploadsHandler struct {
	uploader *media.Uploader
	maxBytes int64
}

// NewUploadsHandler creates a new uploads handler
func NewUploadsHandler(uploader *media.Uploader, maxBytes int64) *UploadsHandler {
	if maxBytes <= 0 {
		maxBytes = media.DefaultMaxBytes
	}
	return &UploadsHandler{uploader: uploader, maxBytes: maxBytes}
}

// Upload stores the multipart "file" part and returns its public URL. The
// form must carry the configured "upload_preset".
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, fmt.Errorf("%w: %w", portfolio.ErrInvalidRecord, media.ErrTooLarge))
			return
		}
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: missing file part", errBadRequest))
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(r.Context(), file, r.FormValue("upload_preset"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// MediaHandler serves stored images for backends without their own public
// endpoint.
type MediaHandler struct {
	store portfolio.BlobStore
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(store portfolio.BlobStore) *MediaHandler {
	return &MediaHandler{store: store}
}

// Routes returns the routes for stored media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Serve)
	r.Head("/*", h.Serve)
	return r
}

// Serve streams one stored object
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if key == "" {
		writeError(w, r, fmt.Errorf("%w: missing object key", errBadRequest))
		return
	}

	meta, err := h.store.GetObjectMeta(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", meta.ETag)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()
	_, _ = io.Copy(w, body)
}
