package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
	"photofeed/pkg/performance"
	"photofeed/pkg/utils"
)

const watchDebounce = 300 * time.Millisecond

// GalleryStore persists the photo collection as a single JSON slot on
// disk and watches it for external changes. The slot is subject to a byte
// quota; writes that exceed it trigger the inline-payload eviction
// protocol in Save.
type GalleryStore struct {
	path       string
	quotaBytes int64
	logger     *zap.Logger

	mutex     sync.Mutex
	watcher   *fsnotify.Watcher
	debouncer *performance.Debouncer
	lastWrite time.Time
	onReload  func([]models.Photo)
}

// SaveResult reports what a save actually wrote. When Evicted is non-zero
// a destructive cleanup happened and Photos carries the surviving
// collection; callers must reset their state from it wholesale.
type SaveResult struct {
	Photos  []models.Photo
	Evicted int
}

// NewGalleryStore creates a store for the given slot path. quotaBytes
// bounds the serialized collection; zero or negative disables the quota.
func NewGalleryStore(path string, quotaBytes int64, logger *zap.Logger) *GalleryStore {
	store := &GalleryStore{
		path:       path,
		quotaBytes: quotaBytes,
		logger:     logger,
		debouncer:  performance.NewDebouncer(watchDebounce),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("could not create gallery directory", zap.String("path", path), zap.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("could not create file watcher", zap.Error(err))
	} else {
		store.watcher = watcher
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			logger.Warn("could not watch gallery directory", zap.Error(err))
		}
	}

	return store
}

// Path returns the slot location.
func (s *GalleryStore) Path() string {
	return s.path
}

// Load returns the persisted collection, or the seed collection when the
// slot is missing or malformed. Parse failures are swallowed: a broken
// slot means "no saved data", never a fatal error.
func (s *GalleryStore) Load() []models.Photo {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("gallery slot unreadable, using seed collection", zap.Error(err))
		}
		return SeedGallery()
	}

	var photos []models.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		s.logger.Warn("gallery slot malformed, using seed collection", zap.Error(err))
		return SeedGallery()
	}
	if photos == nil {
		return SeedGallery()
	}

	return photos
}

// Save persists the full collection as a single blob. On a capacity
// failure it partitions the collection into network-referenced photos
// (kept) and inline payloads (evicted) and retries with the kept set.
// When nothing is evictable, or the retry still does not fit, the
// storage-exhausted error is returned and nothing further is attempted.
func (s *GalleryStore) Save(photos []models.Photo) (*SaveResult, error) {
	data, err := json.MarshalIndent(photos, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeStorage, "GALLERY_ENCODE_FAILED", "could not serialize gallery")
	}

	if !s.overQuota(data) {
		if err := s.writeSlot(data); err != nil {
			if !isNoSpace(err) {
				return nil, errors.ErrFileWriteFailed.WithInternal(err).WithContext("path", s.path)
			}
		} else {
			return &SaveResult{Photos: photos}, nil
		}
	}

	// Capacity failure: evict inline payloads and retry with the rest.
	keep, evict := partitionByPayload(photos)
	if len(evict) == 0 {
		return nil, errors.ErrStorageExhausted.WithContext("photos", len(photos))
	}

	s.logger.Warn("storage quota exceeded, evicting inline photos",
		zap.Int("evicted", len(evict)),
		zap.Int("kept", len(keep)),
		zap.Int("inlineBytes", inlinePayloadBytes(evict)))

	keepData, err := json.MarshalIndent(keep, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeStorage, "GALLERY_ENCODE_FAILED", "could not serialize gallery")
	}
	if s.overQuota(keepData) {
		return nil, errors.ErrStorageExhausted.WithContext("photos", len(photos))
	}
	if err := s.writeSlot(keepData); err != nil {
		if isNoSpace(err) {
			return nil, errors.ErrStorageExhausted.WithContext("photos", len(photos))
		}
		return nil, errors.ErrFileWriteFailed.WithInternal(err).WithContext("path", s.path)
	}

	return &SaveResult{Photos: keep, Evicted: len(evict)}, nil
}

// StartWatching begins delivering externally-changed collections to the
// callback. The store's own writes are recognized by modification time
// and do not re-enter.
func (s *GalleryStore) StartWatching(onReload func([]models.Photo)) {
	s.mutex.Lock()
	s.onReload = onReload
	s.mutex.Unlock()

	if s.watcher == nil {
		return
	}

	go func() {
		for {
			select {
			case event, ok := <-s.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				s.debouncer.Debounce("reload", s.reloadFromDisk)

			case err, ok := <-s.watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("gallery watcher error", zap.Error(err))
			}
		}
	}()
}

// Close stops the watcher and any pending reloads.
func (s *GalleryStore) Close() {
	s.debouncer.Clear()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("closing gallery watcher", zap.Error(err))
		}
	}
}

func (s *GalleryStore) reloadFromDisk() {
	s.mutex.Lock()
	reload := s.onReload
	lastWrite := s.lastWrite
	s.mutex.Unlock()

	if info, err := os.Stat(s.path); err == nil && !info.ModTime().After(lastWrite) {
		return // our own write
	}

	photos := s.Load()
	s.logger.Info("gallery slot changed externally, rehydrating",
		zap.Int("photos", len(photos)))

	if reload != nil {
		reload(photos)
	}
}

func (s *GalleryStore) writeSlot(data []byte) error {
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return err
	}

	if info, err := os.Stat(s.path); err == nil {
		s.mutex.Lock()
		s.lastWrite = info.ModTime()
		s.mutex.Unlock()
	}
	return nil
}

func (s *GalleryStore) overQuota(data []byte) bool {
	return s.quotaBytes > 0 && int64(len(data)) > s.quotaBytes
}

// partitionByPayload splits the collection into photos referenced over
// the network and photos carrying their bytes inline. Only the latter are
// eligible for eviction. keep is never nil so an evict-everything save
// persists an empty collection, not a null slot.
func partitionByPayload(photos []models.Photo) (keep, evict []models.Photo) {
	keep = make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if p.IsInline() {
			evict = append(evict, p)
		} else {
			keep = append(keep, p)
		}
	}
	return keep, evict
}

func inlinePayloadBytes(photos []models.Photo) int {
	total := 0
	for _, p := range photos {
		total += utils.DataURLPayloadSize(p.URL)
	}
	return total
}

func isNoSpace(err error) bool {
	for err != nil {
		if err == syscall.ENOSPC {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
