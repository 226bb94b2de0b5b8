package image

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/imagevault/service/internal/metrics"
	"github.com/imagevault/service/internal/response"
	"github.com/imagevault/service/internal/storage"
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc           *Service
	log           *zap.Logger
	maxUploadSize int64
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service, log *zap.Logger, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, log: log, maxUploadSize: maxUploadSize}
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns metadata for all stored images, most recent first. Payloads are not included.
//	@Tags			images
//	@Produce		json
//	@Success		200	{array}		Image
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.List(r.Context())
	if err != nil {
		h.log.Error("list images failed", zap.Error(err))
		response.InternalError(w, "Failed to list images")
		return
	}
	response.OK(w, images)
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Accepts a multipart image file, stores the payload, and records its metadata.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"image file (png, jpg, jpeg, gif, bmp, webp)"
//	@Param			user_id	formData	integer	false	"owner id"
//	@Success		201		{object}	Image
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("read upload body failed", zap.Error(err))
		response.InternalError(w, "Failed to read file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	var ownerID *int64
	if v := r.FormValue("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid user_id")
			return
		}
		ownerID = &id
	}

	img, err := h.svc.Upload(r.Context(), payload, header.Filename, mimeType, ownerID)
	if errors.Is(err, ErrInvalidImage) {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		response.BadRequest(w, "Invalid image file")
		return
	}
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		h.log.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		response.InternalError(w, "Failed to upload image")
		return
	}

	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	response.Created(w, img)
}

// Download godoc
//
//	@Summary		Download an image
//	@Description	Streams the stored payload with its recorded content type and original filename.
//	@Tags			images
//	@Produce		octet-stream
//	@Param			id	path		integer	true	"image id"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/download/{id} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	body, img, err := h.svc.Download(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		metrics.ImageDownloadsTotal.WithLabelValues("error").Inc()
		response.NotFound(w, "Image not found")
		return
	}
	if errors.Is(err, storage.ErrObjectMissing) {
		// Distinct from a metadata miss: the record exists but its
		// payload is gone. Both read as 404 to the caller.
		metrics.ImageDownloadsTotal.WithLabelValues("error").Inc()
		response.NotFound(w, "Image file not found in storage")
		return
	}
	if err != nil {
		metrics.ImageDownloadsTotal.WithLabelValues("error").Inc()
		h.log.Error("download failed", zap.Int64("id", id), zap.Error(err))
		response.InternalError(w, "Failed to download image")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": img.OriginalName}))
	if _, err := io.Copy(w, body); err != nil {
		h.log.Error("stream payload failed", zap.Int64("id", id), zap.Error(err))
		return
	}
	metrics.ImageDownloadsTotal.WithLabelValues("success").Inc()
}

// Delete godoc
//
//	@Summary		Delete an image
//	@Description	Removes the metadata record, the stored payload (best-effort), and the cache entry.
//	@Tags			images
//	@Produce		json
//	@Param			id	path		integer	true	"image id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	err := h.svc.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "Image not found")
		return
	}
	if err != nil {
		h.log.Error("delete failed", zap.Int64("id", id), zap.Error(err))
		response.InternalError(w, "Failed to delete image")
		return
	}

	response.OK(w, map[string]string{"message": "Image deleted successfully"})
}

// pathID parses the integer {id} path parameter, writing a 404 on garbage
// since a non-integer id can never name an existing image.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "Image not found")
		return 0, false
	}
	return id, true
}
