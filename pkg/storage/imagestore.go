package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
	"photofeed/pkg/performance"
	"photofeed/pkg/utils"
)

// Served images are immutable once stored, so reads can be cached
// aggressively. The budget bounds resident bytes, not entries.
const imageCacheBudget = 32 * 1024 * 1024

// ImageStore keeps original upload files on disk. Uploads land here when
// they are too large to inline into the gallery slot; the gallery then
// references them by served path, which keeps them out of quota eviction.
type ImageStore struct {
	dataDir string
	mutex   sync.RWMutex
	cache   *performance.ReadCache
}

type cachedImage struct {
	data []byte
	meta *models.ImageFile
}

// NewImageStore creates a new image store rooted at dataDir.
func NewImageStore(dataDir string) *ImageStore {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// The error resurfaces on the first write attempt.
		fmt.Fprintf(os.Stderr, "warning: could not create images directory %s: %v\n", dataDir, err)
	}

	return &ImageStore{
		dataDir: dataDir,
		cache:   performance.NewReadCache(imageCacheBudget),
	}
}

// Store writes the image bytes and a metadata sidecar, returning the
// file's metadata.
func (is *ImageStore) Store(data []byte, contentType, filename string) (*models.ImageFile, error) {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	if err := os.MkdirAll(is.dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeIO, "DIR_CREATE_FAILED", "cannot create images directory")
	}

	image := &models.ImageFile{
		ID:          utils.NewPhotoID(),
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now(),
	}

	if err := os.WriteFile(is.imagePath(image.ID), data, 0644); err != nil {
		return nil, errors.ErrFileWriteFailed.WithInternal(err).WithContext("imageId", image.ID)
	}

	meta, err := json.MarshalIndent(image, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeStorage, "IMAGE_META_ENCODE_FAILED", "could not serialize image metadata")
	}
	if err := os.WriteFile(is.metaPath(image.ID), meta, 0644); err != nil {
		return nil, errors.ErrFileWriteFailed.WithInternal(err).WithContext("imageId", image.ID)
	}

	return image, nil
}

// Get returns the image bytes and metadata for an id. Hot images are
// served from memory; callers must not mutate the returned slice.
func (is *ImageStore) Get(id string) ([]byte, *models.ImageFile, error) {
	if hit, ok := is.cache.Get(id); ok {
		cached := hit.(cachedImage)
		return cached.data, cached.meta, nil
	}

	is.mutex.RLock()
	defer is.mutex.RUnlock()

	image, err := is.loadMeta(id)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(is.imagePath(id))
	if err != nil {
		return nil, nil, errors.ErrImageNotFound.WithInternal(err).WithContext("imageId", id)
	}

	is.cache.Put(id, cachedImage{data: data, meta: image}, int64(len(data)))
	return data, image, nil
}

// Delete removes an image and its metadata.
func (is *ImageStore) Delete(id string) error {
	is.mutex.Lock()
	defer is.mutex.Unlock()

	is.cache.Remove(id)

	if err := os.Remove(is.imagePath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrTypeIO, "IMAGE_DELETE_FAILED", "could not delete image").
			WithContext("imageId", id)
	}
	if err := os.Remove(is.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrTypeIO, "IMAGE_DELETE_FAILED", "could not delete image metadata").
			WithContext("imageId", id)
	}
	return nil
}

// List returns metadata for all stored images.
func (is *ImageStore) List() ([]*models.ImageFile, error) {
	is.mutex.RLock()
	defer is.mutex.RUnlock()

	entries, err := os.ReadDir(is.dataDir)
	if err != nil {
		return nil, errors.ErrFileReadFailed.WithInternal(err).WithContext("path", is.dataDir)
	}

	var images []*models.ImageFile
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		image, err := is.loadMeta(id)
		if err != nil {
			continue // skip corrupted sidecars
		}
		images = append(images, image)
	}

	return images, nil
}

func (is *ImageStore) loadMeta(id string) (*models.ImageFile, error) {
	data, err := os.ReadFile(is.metaPath(id))
	if err != nil {
		return nil, errors.ErrImageNotFound.WithInternal(err).WithContext("imageId", id)
	}

	var image models.ImageFile
	if err := json.Unmarshal(data, &image); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeStorage, "IMAGE_META_MALFORMED", "image metadata unreadable").
			WithContext("imageId", id)
	}

	return &image, nil
}

func (is *ImageStore) imagePath(id string) string {
	return filepath.Join(is.dataDir, id+".bin")
}

func (is *ImageStore) metaPath(id string) string {
	return filepath.Join(is.dataDir, id+".json")
}
