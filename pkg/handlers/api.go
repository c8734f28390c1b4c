package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"photofeed/pkg/errors"
	"photofeed/pkg/ingest"
	"photofeed/pkg/models"
	"photofeed/pkg/services"
	"photofeed/pkg/storage"
)

// Uploads are photos, not arbitrary archives.
const maxUploadBytes = 50 << 20

// APIHandlers contains API endpoint handlers
type APIHandlers struct {
	service  *services.GalleryService
	pipeline *ingest.Pipeline
	images   *storage.ImageStore
	logger   *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(service *services.GalleryService, pipeline *ingest.Pipeline, images *storage.ImageStore, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		service:  service,
		pipeline: pipeline,
		images:   images,
		logger:   logger,
	}
}

// Routes assembles the /api subtree.
func (h *APIHandlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/view", h.GetViewHandler)
	r.Get("/photos", h.GetPhotosHandler)
	r.Post("/photos", h.UpsertPhotoHandler)
	r.Get("/photos/{id}", h.GetPhotoHandler)
	r.Put("/photos/{id}", h.UpdatePhotoHandler)
	r.Delete("/photos/{id}", h.DeletePhotoHandler)
	r.Get("/photos/{id}/neighbor", h.NavigateHandler)

	r.Post("/feed/category", h.SetCategoryHandler)
	r.Post("/feed/tab", h.SetTabHandler)
	r.Post("/feed/shuffle", h.ShuffleHandler)
	r.Post("/feed/more", h.MoreHandler)
	r.Post("/feed/focus", h.FocusHandler)
	r.Post("/feed/map", h.MapModeHandler)

	r.Post("/location/refresh", h.RefreshLocationHandler)
	r.Post("/upload", h.UploadHandler)
	r.Post("/backup", h.BackupHandler)

	return r
}

// GetViewHandler returns the current feed view
func (h *APIHandlers) GetViewHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.View())
}

// GetPhotosHandler returns the full canonical collection, newest first
func (h *APIHandlers) GetPhotosHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Photos())
}

// GetPhotoHandler returns a specific photo by ID
func (h *APIHandlers) GetPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := h.service.Get(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// UpsertPhotoHandler adds a photo or replaces one with the same ID
func (h *APIHandlers) UpsertPhotoHandler(w http.ResponseWriter, r *http.Request) {
	var photo models.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	saved, err := h.service.Upsert(photo)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// UpdatePhotoHandler edits a photo in place. The path ID wins over
// whatever the body carries, so the entry keeps its feed position.
func (h *APIHandlers) UpdatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	var photo models.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	photo.ID = chi.URLParam(r, "id")

	saved, err := h.service.Upsert(photo)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// DeletePhotoHandler deletes a photo; destructive, so it insists on
// ?confirm=true
func (h *APIHandlers) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.service.Remove(id, confirmed); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NavigateHandler returns the neighbor of a photo in the composed feed.
// The body is null at either boundary.
func (h *APIHandlers) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	direction := 1
	if r.URL.Query().Get("direction") == "prev" {
		direction = -1
	}

	photo, err := h.service.Navigate(id, direction)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// SetCategoryHandler switches the category filter and returns the
// recomposed view
func (h *APIHandlers) SetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category models.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.service.SetCategory(req.Category); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.service.View())
}

// SetTabHandler switches the active tab and returns the recomposed view
func (h *APIHandlers) SetTabHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab models.TabMode `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.service.SetTab(req.Tab); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.service.View())
}

// ShuffleHandler deals a fresh shuffle permutation
func (h *APIHandlers) ShuffleHandler(w http.ResponseWriter, r *http.Request) {
	h.service.TriggerShuffle()
	respondJSON(w, http.StatusOK, h.service.View())
}

// MoreHandler reveals the next page and returns the new window
func (h *APIHandlers) MoreHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"window": h.service.RequestMore(),
	})
}

// FocusHandler opens the lightbox on a photo, or closes it for an
// empty ID
func (h *APIHandlers) FocusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.service.SetFocus(req.ID); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// MapModeHandler toggles the map view
func (h *APIHandlers) MapModeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.service.SetMapMode(req.Enabled)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// RefreshLocationHandler re-resolves the user's coordinates in the
// background
func (h *APIHandlers) RefreshLocationHandler(w http.ResponseWriter, r *http.Request) {
	h.service.RefreshLocation()
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Location refresh requested",
	})
}

// UploadHandler ingests a multipart image upload into the gallery
func (h *APIHandlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		http.Error(w, "File size exceeds limit", http.StatusRequestEntityTooLarge)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file found in the request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	photo, err := h.pipeline.Ingest(data, header.Filename, r.FormValue("title"), models.Category(r.FormValue("category")))
	if err != nil {
		h.respondError(w, err)
		return
	}

	saved, err := h.service.Upsert(photo)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// BackupHandler zips the gallery slot and stored images
func (h *APIHandlers) BackupHandler(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.Backup()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"path":    path,
	})
}

// ImageHandler serves a stored original by ID. IDs never repeat, so the
// response can be cached forever.
func (h *APIHandlers) ImageHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, meta, err := h.images.Get(id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *APIHandlers) respondError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok && h.logger != nil {
		appErr.Log(h.logger)
	}
	respondJSON(w, errors.HTTPStatus(err), errors.ToFrontendError(err))
}
