// Package proxy serves stored objects back to clients as a read-through
// layer: every request fetches live from the backing store, and responses
// carry immutable cache directives so browsers and the CDN edge cache them
// permanently. Correct only because object paths are write-once.
package proxy

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/upix/service/internal/response"
	"github.com/upix/service/internal/storage"
)

// cacheControl marks every served object permanently fresh downstream.
// Upload ids are unique and renditions are never rewritten, so a path's
// content can never change.
const cacheControl = "public, max-age=31536000, immutable"

type notFoundBody struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// Handler serves objects from a backing store.
type Handler struct {
	store storage.Storage
	types map[string]string
}

// NewHandler creates a proxy Handler. types maps file extensions (with dot,
// lower case) to MIME types; unrecognized extensions fall back to
// application/octet-stream.
func NewHandler(store storage.Storage, types map[string]string) *Handler {
	return &Handler{store: store, types: types}
}

// DefaultContentTypes returns the extension→MIME table for content this
// service stores and the CDN is expected to front.
func DefaultContentTypes() map[string]string {
	return map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
		".svg":  "image/svg+xml",
		".avif": "image/avif",
		".ico":  "image/x-icon",
		".json": "application/json",
		".pdf":  "application/pdf",
		".txt":  "text/plain",
	}
}

// Serve godoc
//
//	@Summary		Fetch a stored object
//	@Description	Streams the object at the request path from the backing store, with content type inferred from the file extension and long-lived cache headers.
//	@Tags			proxy
//	@Produce		octet-stream
//	@Success		200	{file}		binary
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	notFoundBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/{path} [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimLeft(r.URL.Path, "/")
	if key == "" {
		response.BadRequest(w, "Missing path")
		return
	}

	data, err := h.store.Get(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		response.JSON(w, http.StatusNotFound, notFoundBody{Error: "File not found", Path: key})
		return
	}
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "proxy failed",
			"details": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", h.contentType(key))
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) contentType(key string) string {
	if t, ok := h.types[strings.ToLower(path.Ext(key))]; ok {
		return t
	}
	return "application/octet-stream"
}
