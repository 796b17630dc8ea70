package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/upix/service/internal/response"
)

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type uploadRequest struct {
	File string `json:"file" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

type deleteResponse struct {
	Status  string   `json:"status"  example:"success"`
	Deleted []string `json:"deleted"`
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Accepts a base64 (or data-URI) encoded image, stores the original plus webp and thumbnail renditions, and returns their public URLs. Limited to one upload per second per user.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Param			x-user-id	header		string			false	"User identifier (defaults to anonymous)"
//	@Param			request		body		uploadRequest	true	"Base64 image payload"
//	@Success		200			{object}	Result
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		413			{object}	response.ErrorBody
//	@Failure		429			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		userID = "anonymous"
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Missing base64 file")
		return
	}

	result, err := h.svc.Ingest(r.Context(), userID, req.File)
	switch {
	case errors.Is(err, ErrMissingFile):
		response.BadRequest(w, "Missing base64 file")
	case errors.Is(err, ErrBadEncoding):
		response.BadRequest(w, "Invalid base64 file")
	case errors.Is(err, ErrRateLimited):
		response.TooManyRequests(w, "Too fast, retry later")
	case errors.Is(err, ErrTooLarge):
		response.PayloadTooLarge(w, "File > 8MB blocked")
	case err != nil:
		response.InternalError(w, "Upload failed", err.Error())
	default:
		response.JSON(w, http.StatusOK, result)
	}
}

// Delete godoc
//
//	@Summary		Delete an upload
//	@Description	Removes every stored rendition whose key contains the given upload id.
//	@Tags			uploads
//	@Produce		json
//	@Param			id	query		string	true	"Upload id"
//	@Success		200	{object}	deleteResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		response.BadRequest(w, "Missing id")
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Not found")
	case err != nil:
		response.InternalError(w, "Delete failed", err.Error())
	default:
		response.JSON(w, http.StatusOK, deleteResponse{Status: "success", Deleted: deleted})
	}
}

// Options answers bare preflight requests with an empty 204.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	response.NoContent(w)
}
