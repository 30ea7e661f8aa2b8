package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/kmv-events/gallery-backend/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const multipartMemoryLimit = 32 << 20

type GalleryHandler struct {
	gallery *domain.GalleryService
	log     *logger.ZapLogger

	// exposeErrors appends upstream error detail to responses; off in production.
	exposeErrors bool
}

func NewGalleryHandler(gallery *domain.GalleryService, log *logger.ZapLogger, exposeErrors bool) *GalleryHandler {
	return &GalleryHandler{
		gallery:      gallery,
		log:          log,
		exposeErrors: exposeErrors,
	}
}

// GET /api/gallery
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.gallery.List(r.Context())
	if err != nil {
		h.fail(w, err, "failed to load gallery")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"photos":  photos,
	})
}

// GET /api/gallery/{id}
func (h *GalleryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	photo, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, "failed to load photo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"photo":   photo,
	})
}

// POST /api/gallery/upload
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file uploaded.")
		return
	}
	defer file.Close()

	// the pipeline must finish (and clean its staged file) even if the
	// client hangs up mid-upload
	ctx := context.WithoutCancel(r.Context())

	photo, err := h.gallery.Upload(ctx, file, header,
		r.FormValue("caption"),
		r.FormValue("uploader"),
	)
	if err != nil {
		h.fail(w, err, "Image processing failed.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Image uploaded and saved successfully",
		"photo":   photo,
	})
}

// POST /api/gallery — register an externally hosted photo by URL.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoURL string `json:"photoUrl"`
		PublicID string `json:"publicId"`
		Caption  string `json:"caption"`
		Uploader string `json:"uploader"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	photo, err := h.gallery.CreateFromURL(r.Context(), req.PhotoURL, req.PublicID, req.Caption, req.Uploader)
	if err != nil {
		h.fail(w, err, "failed to save photo")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Photo saved",
		"photo":   photo,
	})
}

// DELETE /api/gallery/{id}
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	photo, err := h.gallery.Delete(context.WithoutCancel(r.Context()), id)
	if err != nil {
		h.fail(w, err, "failed to remove photo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Photo removed",
		"id":       photo.ID.Hex(),
		"publicId": photo.AssetID,
	})
}

// GET /health
func (h *GalleryHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.gallery.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"message": "record store unreachable",
			"db":      "down",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ok",
		"db":      "up",
	})
}

// photoID rejects missing, literal "undefined"/"null" and malformed ids
// before any store call.
func (h *GalleryHandler) photoID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" || raw == "undefined" || raw == "null" {
		writeError(w, http.StatusBadRequest, "missing photo id")
		return bson.ObjectID{}, false
	}

	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return bson.ObjectID{}, false
	}

	return id, true
}

func (h *GalleryHandler) fail(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAssetStore), errors.Is(err, domain.ErrRecordStore):
		status = http.StatusInternalServerError
	}

	h.log.Log(logger.LogEntry{
		Level:   "error",
		Message: msg,
		Fields:  map[string]any{"status": status},
		Error:   err,
	})

	switch {
	case errors.Is(err, domain.ErrValidation):
		// validation reasons describe the client's own input, always safe to return
		msg = err.Error()
	case h.exposeErrors:
		msg = msg + ": " + err.Error()
	}
	writeError(w, status, msg)
}
