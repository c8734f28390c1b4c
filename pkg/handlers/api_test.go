package handlers

import (
	"bytes"
	"encoding/json"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photofeed/pkg/config"
	"photofeed/pkg/errors"
	"photofeed/pkg/ingest"
	"photofeed/pkg/models"
	"photofeed/pkg/services"
	"photofeed/pkg/storage"
	"photofeed/pkg/types"
)

func newTestRouter(t *testing.T) (chi.Router, *services.GalleryService, *storage.ImageStore) {
	t.Helper()

	cfg := &config.Config{DataDir: t.TempDir(), PageSize: 4}
	store := storage.NewGalleryStore(cfg.GalleryPath(), 0, zap.NewNop())
	images := storage.NewImageStore(cfg.ImagesDir())
	svc := services.NewGalleryService(cfg, store, images, nil, zap.NewNop())
	t.Cleanup(svc.Close)
	svc.Hydrate()

	api := NewAPIHandlers(svc, ingest.NewPipeline(images, zap.NewNop()), images, zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/api", api.Routes())
	r.Get("/images/{id}", api.ImageHandler)
	return r, svc, images
}

func doJSON(t *testing.T, router chi.Router, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) types.FeedView {
	t.Helper()
	var view types.FeedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func decodeFrontendError(t *testing.T, rec *httptest.ResponseRecorder) errors.FrontendError {
	t.Helper()
	var fe errors.FrontendError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fe))
	return fe
}

func apiPhoto(id string) models.Photo {
	return models.Photo{
		ID:       id,
		URL:      "https://picsum.photos/seed/" + id + "/1600/1067",
		Title:    "Photo " + id,
		Category: models.CategoryStreet,
		Width:    1600,
		Height:   1067,
		Rating:   4,
	}
}

func TestGetViewHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, 8, view.Total, "missing slot hydrates the seed collection")
	assert.Equal(t, 4, view.Window)
	assert.Equal(t, models.TabLatest, view.Tab)
	assert.Len(t, view.Photos, 4)
}

func TestUpsertPhotoHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/photos", apiPhoto("added001"))
	require.Equal(t, http.StatusOK, rec.Code)

	photos := svc.Photos()
	require.Len(t, photos, 9)
	assert.Equal(t, "added001", photos[0].ID)
}

func TestUpsertPhotoHandlerInvalidJSON(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/photos", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertPhotoHandlerValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	bad := apiPhoto("badphoto")
	bad.Rating = 11
	rec := doJSON(t, router, http.MethodPost, "/api/photos", bad)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RATING_OUT_OF_RANGE", decodeFrontendError(t, rec).Code)
}

func TestUpdatePhotoHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	target := svc.Photos()[2]

	edited := target
	edited.ID = "ignored0"
	edited.Title = "Renamed"
	rec := doJSON(t, router, http.MethodPut, "/api/photos/"+target.ID, edited)
	require.Equal(t, http.StatusOK, rec.Code)

	photos := svc.Photos()
	require.Len(t, photos, 8, "an edit never grows the collection")
	assert.Equal(t, target.ID, photos[2].ID, "the path ID wins over the body")
	assert.Equal(t, "Renamed", photos[2].Title)
}

func TestDeletePhotoHandlerConfirmFlow(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	id := svc.Photos()[0].ID

	rec := doJSON(t, router, http.MethodDelete, "/api/photos/"+id, nil)
	require.Equal(t, http.StatusConflict, rec.Code, "unconfirmed deletes are refused")
	assert.Equal(t, "DELETE_NOT_CONFIRMED", decodeFrontendError(t, rec).Code)
	assert.Len(t, svc.Photos(), 8)

	rec = doJSON(t, router, http.MethodDelete, "/api/photos/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, svc.Photos(), 7)

	rec = doJSON(t, router, http.MethodDelete, "/api/photos/"+id+"?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNavigateHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	photos := svc.Photos()

	rec := doJSON(t, router, http.MethodGet, "/api/photos/"+photos[0].ID+"/neighbor?direction=next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var next models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.Equal(t, photos[1].ID, next.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/photos/"+photos[0].ID+"/neighbor?direction=prev", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()), "boundary navigation returns null")

	rec = doJSON(t, router, http.MethodGet, "/api/photos/deadbeef/neighbor", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetTabHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/feed/tab", map[string]string{"tab": "curated"})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, models.TabCurated, view.Tab)
	for _, p := range view.Photos {
		assert.GreaterOrEqual(t, p.Rating, 4)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/feed/tab", map[string]string{"tab": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetCategoryHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/feed/category", map[string]string{"category": "vertical"})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, models.FilterVertical, view.Category)
	for _, p := range view.Photos {
		assert.Greater(t, p.Height, p.Width)
	}
}

func TestMoreHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/feed/more", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Window int `json:"window"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.Window)
}

func TestShuffleHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/feed/shuffle", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMapModeHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/feed/map", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.View().MapMode)
}

func TestFocusHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	id := svc.Photos()[2].ID

	rec := doJSON(t, router, http.MethodPost, "/api/feed/focus", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.View().FocusedID)

	rec = doJSON(t, router, http.MethodPost, "/api/feed/focus", map[string]string{"id": "deadbeef"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)

	var jpeg bytes.Buffer
	require.NoError(t, imaging.Encode(&jpeg, imaging.New(320, 200, color.NRGBA{R: 20, G: 40, B: 80, A: 255}), imaging.JPEG))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "upload.jpg")
	require.NoError(t, err)
	_, err = part.Write(jpeg.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("title", "Uploaded"))
	require.NoError(t, writer.WriteField("category", "street"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var photo models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photo))
	assert.Equal(t, "Uploaded", photo.Title)
	assert.Equal(t, models.CategoryStreet, photo.Category)
	assert.True(t, photo.IsInline())

	assert.Len(t, svc.Photos(), 9)
	assert.Equal(t, photo.ID, svc.Photos()[0].ID)
}

func TestUploadHandlerNoFile(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "nothing"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImageHandler(t *testing.T) {
	router, _, images := newTestRouter(t)

	stored, err := images.Store([]byte("jpeg bytes"), "image/jpeg", "direct.jpg")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/images/"+stored.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg bytes", rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/images/deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupHandler(t *testing.T) {
	router, svc, _ := newTestRouter(t)

	// Persist the slot first so there is something to archive.
	_, err := svc.Upsert(apiPhoto("persist1"))
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Path, "backup-")
}
