package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
)

func newTestStore(t *testing.T, quotaBytes int64) *GalleryStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gallery.json")
	store := NewGalleryStore(path, quotaBytes, zap.NewNop())
	t.Cleanup(store.Close)
	return store
}

func networkPhoto(id string) models.Photo {
	return models.Photo{
		ID:       id,
		URL:      "https://example.com/" + id + ".jpg",
		Title:    "photo " + id,
		Category: models.CategoryLandscape,
	}
}

func inlinePhoto(id string, payloadLen int) models.Photo {
	return models.Photo{
		ID:       id,
		URL:      "data:image/jpeg;base64," + strings.Repeat("A", payloadLen),
		Title:    "photo " + id,
		Category: models.CategoryMacro,
	}
}

func TestGalleryStore_LoadMissingSlotReturnsSeed(t *testing.T) {
	store := newTestStore(t, 0)

	photos := store.Load()

	require.NotEmpty(t, photos)
	assert.Equal(t, SeedGallery(), photos)
}

func TestGalleryStore_LoadMalformedSlotReturnsSeed(t *testing.T) {
	store := newTestStore(t, 0)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0644))

	assert.Equal(t, SeedGallery(), store.Load())
}

func TestGalleryStore_LoadNullSlotReturnsSeed(t *testing.T) {
	store := newTestStore(t, 0)
	require.NoError(t, os.WriteFile(store.Path(), []byte("null"), 0644))

	assert.Equal(t, SeedGallery(), store.Load())
}

func TestGalleryStore_LoadEmptyCollectionIsNotSeed(t *testing.T) {
	store := newTestStore(t, 0)
	require.NoError(t, os.WriteFile(store.Path(), []byte("[]"), 0644))

	photos := store.Load()
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
}

func TestGalleryStore_SaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t, 0)
	photos := []models.Photo{networkPhoto("aa11bb22"), inlinePhoto("cc33dd44", 64)}

	result, err := store.Save(photos)
	require.NoError(t, err)
	assert.Zero(t, result.Evicted)
	assert.Equal(t, photos, result.Photos)

	assert.Equal(t, photos, store.Load())
}

func TestGalleryStore_QuotaEvictsOnlyInlinePhotos(t *testing.T) {
	store := newTestStore(t, 2048)
	photos := []models.Photo{
		networkPhoto("aa11bb22"),
		inlinePhoto("cc33dd44", 4096),
		networkPhoto("ee55ff66"),
		inlinePhoto("0077aa88", 4096),
	}

	result, err := store.Save(photos)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Evicted)

	// The persisted slot has zero inline entries and every original
	// network entry, in their original relative order.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var persisted []models.Photo
	require.NoError(t, json.Unmarshal(data, &persisted))

	require.Len(t, persisted, 2)
	assert.Equal(t, "aa11bb22", persisted[0].ID)
	assert.Equal(t, "ee55ff66", persisted[1].ID)
	for _, p := range persisted {
		assert.False(t, p.IsInline())
	}
	assert.Equal(t, persisted, result.Photos)
}

func TestGalleryStore_AllNetworkOverQuotaIsExhausted(t *testing.T) {
	store := newTestStore(t, 64)
	photos := []models.Photo{networkPhoto("aa11bb22"), networkPhoto("cc33dd44")}

	_, err := store.Save(photos)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "STORAGE_EXHAUSTED"))
}

func TestGalleryStore_AllInlineOverQuotaPersistsEmptyCollection(t *testing.T) {
	store := newTestStore(t, 512)
	photos := []models.Photo{inlinePhoto("aa11bb22", 2048), inlinePhoto("cc33dd44", 2048)}

	result, err := store.Save(photos)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Evicted)
	assert.Empty(t, result.Photos)

	// An emptied slot reads back as an empty collection, not the seed.
	loaded := store.Load()
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestGalleryStore_KeptSetStillOverQuotaIsExhausted(t *testing.T) {
	store := newTestStore(t, 256)
	big := networkPhoto("aa11bb22")
	big.Title = strings.Repeat("x", 1024)

	_, err := store.Save([]models.Photo{big, inlinePhoto("cc33dd44", 2048)})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "STORAGE_EXHAUSTED"))
}

func TestGalleryStore_ExhaustedSaveLeavesSlotUntouched(t *testing.T) {
	store := newTestStore(t, 4096)
	original := []models.Photo{networkPhoto("aa11bb22")}
	_, err := store.Save(original)
	require.NoError(t, err)

	huge := networkPhoto("cc33dd44")
	huge.Title = strings.Repeat("x", 8192)
	_, err = store.Save([]models.Photo{huge})
	require.Error(t, err)

	assert.Equal(t, original, store.Load())
}

func TestGalleryStore_RehydratesOnExternalChange(t *testing.T) {
	store := newTestStore(t, 0)
	_, err := store.Save([]models.Photo{networkPhoto("aa11bb22")})
	require.NoError(t, err)

	reloaded := make(chan []models.Photo, 1)
	store.StartWatching(func(photos []models.Photo) {
		select {
		case reloaded <- photos:
		default:
		}
	})

	// Simulate another process rewriting the slot.
	time.Sleep(50 * time.Millisecond)
	external := []models.Photo{networkPhoto("cc33dd44"), networkPhoto("ee55ff66")}
	data, err := json.MarshalIndent(external, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), data, 0644))

	select {
	case photos := <-reloaded:
		assert.Equal(t, external, photos)
	case <-time.After(3 * time.Second):
		t.Fatal("external change never delivered")
	}
}

func TestGalleryStore_OwnWritesDoNotRehydrate(t *testing.T) {
	store := newTestStore(t, 0)

	reloaded := make(chan []models.Photo, 1)
	store.StartWatching(func(photos []models.Photo) {
		select {
		case reloaded <- photos:
		default:
		}
	})

	time.Sleep(50 * time.Millisecond)
	_, err := store.Save([]models.Photo{networkPhoto("aa11bb22")})
	require.NoError(t, err)

	select {
	case <-reloaded:
		t.Fatal("store's own save re-entered through the watcher")
	case <-time.After(700 * time.Millisecond):
	}
}

func TestPartitionByPayload(t *testing.T) {
	keep, evict := partitionByPayload([]models.Photo{
		networkPhoto("aa11bb22"),
		inlinePhoto("cc33dd44", 16),
		networkPhoto("ee55ff66"),
	})

	require.Len(t, keep, 2)
	require.Len(t, evict, 1)
	assert.Equal(t, "cc33dd44", evict[0].ID)

	t.Run("all inline keeps an empty non-nil set", func(t *testing.T) {
		keep, evict := partitionByPayload([]models.Photo{inlinePhoto("aa11bb22", 16)})
		assert.NotNil(t, keep)
		assert.Empty(t, keep)
		assert.Len(t, evict, 1)
	})
}
