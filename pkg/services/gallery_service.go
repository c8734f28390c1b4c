package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"photofeed/pkg/config"
	"photofeed/pkg/errors"
	"photofeed/pkg/feed"
	"photofeed/pkg/geo"
	"photofeed/pkg/location"
	"photofeed/pkg/models"
	"photofeed/pkg/performance"
	"photofeed/pkg/storage"
	"photofeed/pkg/types"
	"photofeed/pkg/utils"
)

const locationRefreshInterval = 2 * time.Second

// Notices are drained with every view; the cap only matters when
// nothing is polling.
const maxQueuedNotices = 20

// GalleryService owns the canonical photo collection and everything
// derived from it: the composed feed, the reveal window, the focused
// photo and the notice queue. All mutations funnel through it, so the
// composed feed and the persisted slot can never drift apart.
type GalleryService struct {
	cfg      *config.Config
	store    *storage.GalleryStore
	images   *storage.ImageStore
	resolver *location.Resolver
	pager    *feed.Pager
	throttle *performance.ThrottledExecutor
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mutex     sync.Mutex
	photos    []models.Photo
	composed  []models.Photo
	category  models.Category
	tab       models.TabMode
	epoch     uint64
	origin    *models.GeoCoordinate
	focusedID string
	mapMode   bool
	composing bool
	scrollTop bool
	notices   []types.Notice
}

// NewGalleryService creates the orchestrator. The images store and the
// resolver may be nil; the matching features degrade quietly.
func NewGalleryService(cfg *config.Config, store *storage.GalleryStore, images *storage.ImageStore, resolver *location.Resolver, logger *zap.Logger) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &GalleryService{
		cfg:      cfg,
		store:    store,
		images:   images,
		resolver: resolver,
		throttle: performance.NewThrottledExecutor(locationRefreshInterval),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		category: models.DefaultCategory,
		tab:      models.DefaultTab,
		// Each session gets its own starting permutation.
		epoch: uint64(time.Now().UnixNano()),
	}
	s.pager = feed.NewPager(cfg.PageSize, cfg.RevealDelay(), func(window int) {
		logger.Debug("reveal timer advanced window", zap.Int("window", window))
	})
	return s
}

// Hydrate loads the persisted collection, composes the initial feed and
// starts watching the slot for external changes.
func (s *GalleryService) Hydrate() {
	photos := s.store.Load()

	s.mutex.Lock()
	s.photos = photos
	s.recomposeLocked(true)
	s.mutex.Unlock()

	s.store.StartWatching(s.onExternalChange)
	s.logger.Info("gallery hydrated", zap.Int("photos", len(photos)))
}

// Upsert replaces the photo with the same ID in place, or inserts a new
// one at the top of the collection. A new photo also resets the
// category filter and tab so it is actually visible, and the change is
// persisted before returning.
func (s *GalleryService) Upsert(photo models.Photo) (models.Photo, error) {
	if strings.TrimSpace(photo.ID) == "" {
		photo.ID = utils.NewPhotoID()
	}

	validator := errors.NewValidator()
	if result := validator.ValidatePhoto(photo); !result.IsValid {
		err := result.GetFirstError()
		err.Log(s.logger)
		return models.Photo{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	replaced := false
	for i, existing := range s.photos {
		if existing.ID == photo.ID {
			s.photos[i] = photo
			replaced = true
			break
		}
	}
	if !replaced {
		s.photos = append([]models.Photo{photo}, s.photos...)
		s.category = models.DefaultCategory
		s.tab = models.DefaultTab
	}

	s.recomposeLocked(!replaced)

	if err := s.persistLocked(); err != nil {
		// The change stays visible for this session even though it
		// could not be saved.
		return photo, err
	}

	s.logger.Info("photo upserted",
		zap.String("id", photo.ID),
		zap.Bool("replaced", replaced))
	return photo, nil
}

// Remove deletes a photo from the collection. Deletion is destructive,
// so it must be explicitly confirmed; an unconfirmed call changes
// nothing and tells the caller why.
func (s *GalleryService) Remove(id string, confirmed bool) error {
	validator := errors.NewValidator()
	if result := validator.ValidatePhotoID(id); !result.IsValid {
		err := result.GetFirstError()
		err.Log(s.logger)
		return err
	}

	if !confirmed {
		return errors.ErrDeleteNotConfirmed.WithContext("photoId", id)
	}

	s.mutex.Lock()
	index := -1
	for i, p := range s.photos {
		if p.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		s.mutex.Unlock()
		return errors.ErrPhotoNotFound.WithContext("photoId", id)
	}

	removed := s.photos[index]
	s.photos = append(s.photos[:index], s.photos[index+1:]...)
	if s.focusedID == id {
		s.focusedID = ""
	}
	s.recomposeLocked(false)
	err := s.persistLocked()
	s.mutex.Unlock()

	if err != nil {
		return err
	}

	s.cleanupBackingImage(removed)
	s.logger.Info("photo removed", zap.String("id", id))
	return nil
}

// Navigate returns the photo adjacent to id in the composed order and
// moves the focus onto it. At either end of the feed it returns nil and
// the focus stays put.
func (s *GalleryService) Navigate(id string, direction int) (*models.Photo, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	index := -1
	for i, p := range s.composed {
		if p.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, errors.ErrPhotoNotFound.WithContext("photoId", id)
	}

	next := index + direction
	if next < 0 || next >= len(s.composed) {
		return nil, nil
	}

	photo := s.composed[next]
	s.focusedID = photo.ID
	return &photo, nil
}

// SetCategory switches the category filter and recomposes. Setting the
// already active filter is a no-op so the window survives.
func (s *GalleryService) SetCategory(category models.Category) error {
	validator := errors.NewValidator()
	if result := validator.ValidateFilter(category); !result.IsValid {
		err := result.GetFirstError()
		err.Log(s.logger)
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if category == s.category {
		return nil
	}
	s.category = category
	s.recomposeLocked(true)
	return nil
}

// SetTab switches the active tab and recomposes. Selecting the shuffle
// tab always deals a fresh permutation, even when it is already active.
// A proximity tab without a known origin kicks off a location resolve
// in the background.
func (s *GalleryService) SetTab(tab models.TabMode) error {
	validator := errors.NewValidator()
	if result := validator.ValidateTab(tab); !result.IsValid {
		err := result.GetFirstError()
		err.Log(s.logger)
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tab == models.TabShuffle {
		s.epoch++
	} else if tab == s.tab {
		return nil
	}

	s.tab = tab
	if tab.RequiresLocation() && s.origin == nil {
		s.kickResolveLocked()
	}
	s.recomposeLocked(true)
	return nil
}

// TriggerShuffle deals a fresh permutation for the shuffle tab.
func (s *GalleryService) TriggerShuffle() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.epoch++
	if s.tab == models.TabShuffle {
		s.recomposeLocked(true)
	}
}

// RequestMore reveals the next page and returns the new window. The
// viewport sentinel and impatient clients land here; a duplicate call
// is harmless.
func (s *GalleryService) RequestMore() int {
	return s.pager.Advance()
}

// SetFocus opens or closes the lightbox. An empty id clears the focus.
func (s *GalleryService) SetFocus(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if id == "" {
		s.focusedID = ""
		return nil
	}
	for _, p := range s.photos {
		if p.ID == id {
			s.focusedID = id
			return nil
		}
	}
	return errors.ErrPhotoNotFound.WithContext("photoId", id)
}

// SetMapMode toggles the map view. While the map is up the grid is
// hidden, so the reveal timer is suspended.
func (s *GalleryService) SetMapMode(enabled bool) {
	s.mutex.Lock()
	s.mapMode = enabled
	s.mutex.Unlock()

	s.pager.Suspend(enabled)
}

// RefreshLocation drops the cached coordinate and resolves again, rate
// limited so a click-happy user cannot stampede the location source.
func (s *GalleryService) RefreshLocation() {
	if s.resolver == nil {
		return
	}
	s.throttle.Execute(func() {
		s.resolver.Invalidate()

		s.mutex.Lock()
		s.origin = nil
		s.kickResolveLocked()
		s.mutex.Unlock()
	})
}

// View assembles the presentation state for one render. Notices and the
// scroll-to-top request are one-shot and leave the engine when read.
func (s *GalleryService) View() types.FeedView {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// The map plots every photo at once; only the grid reveals them a
	// page at a time.
	window := len(s.composed)
	if !s.mapMode {
		if w := s.pager.Window(); w < window {
			window = w
		}
	}

	proximity := s.tab.RequiresLocation() && s.origin != nil
	visible := make([]types.PhotoView, 0, window)
	for _, p := range s.composed[:window] {
		pv := types.PhotoView{Photo: p}
		if proximity {
			if km := feed.DistanceFrom(p, *s.origin); km != geo.SentinelKm {
				d := km
				pv.DistanceKm = &d
			}
		}
		visible = append(visible, pv)
	}

	view := types.FeedView{
		Photos:    visible,
		Total:     len(s.composed),
		Window:    window,
		Category:  s.category,
		Tab:       s.tab,
		Composing: s.composing,
		MapMode:   s.mapMode,
		FocusedID: s.focusedID,
		ScrollTop: s.scrollTop,
		Notices:   s.notices,
	}
	s.scrollTop = false
	s.notices = nil
	return view
}

// Photos returns a snapshot of the canonical collection, newest first.
func (s *GalleryService) Photos() []models.Photo {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]models.Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// Get returns a single photo by ID.
func (s *GalleryService) Get(id string) (models.Photo, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, p := range s.photos {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Photo{}, errors.ErrPhotoNotFound.WithContext("photoId", id)
}

// Backup writes a zip of the gallery slot and stored images next to the
// slot and returns its path.
func (s *GalleryService) Backup() (string, error) {
	path, err := storage.BackupGallery(s.store.Path(), s.cfg.ImagesDir())
	if err != nil {
		return "", err
	}
	s.logger.Info("gallery backed up", zap.String("path", path))
	return path, nil
}

// Close releases the timers, the watcher and any in-flight resolve.
func (s *GalleryService) Close() {
	s.cancel()
	s.throttle.Stop()
	s.pager.Close()
	s.store.Close()
}

// recomposeLocked rebuilds the composed feed from the current state.
// When the feed's identity changed (new tab, new filter, new
// collection) the window resets and the frontend is asked to scroll
// back to the top; an in-place edit merely clamps.
func (s *GalleryService) recomposeLocked(reset bool) {
	s.composed = feed.Compose(s.photos, s.category, s.tab, s.origin, s.epoch)
	if reset {
		s.pager.Reset(len(s.composed))
		s.scrollTop = true
	} else {
		s.pager.Retotal(len(s.composed))
	}
}

// persistLocked saves the collection. A quota eviction replaces the
// in-memory collection with what actually survived on disk, so memory
// and slot stay in lockstep.
func (s *GalleryService) persistLocked() error {
	result, err := s.store.Save(s.photos)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.Log(s.logger)
		}
		return err
	}

	if result.Evicted > 0 {
		s.photos = result.Photos
		s.queueNoticeLocked(types.NoticeWarning, "GALLERY_CLEANED",
			fmt.Sprintf("Storage was full: %d older photos with embedded images were removed and the gallery was reloaded", result.Evicted))
		s.recomposeLocked(true)
	}
	return nil
}

// kickResolveLocked starts a background location resolve unless one is
// already running or the origin is known. The composing flag stays up
// until the resolve lands, one way or the other.
func (s *GalleryService) kickResolveLocked() {
	if s.resolver == nil || s.origin != nil || s.composing {
		return
	}
	s.composing = true

	go func() {
		coord, err := s.resolver.Resolve(s.ctx)

		s.mutex.Lock()
		defer s.mutex.Unlock()
		s.composing = false

		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				s.queueNoticeLocked(types.NoticeWarning, appErr.Code, appErr.GetUserMessage())
			} else {
				s.queueNoticeLocked(types.NoticeWarning, "GEO_UNKNOWN", "Could not determine your location")
			}
			return
		}

		s.origin = &coord
		if s.tab.RequiresLocation() {
			s.recomposeLocked(true)
		}
	}()
}

func (s *GalleryService) onExternalChange(photos []models.Photo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.photos = photos
	if s.focusedID != "" {
		found := false
		for _, p := range photos {
			if p.ID == s.focusedID {
				found = true
				break
			}
		}
		if !found {
			s.focusedID = ""
		}
	}
	s.queueNoticeLocked(types.NoticeInfo, "GALLERY_RELOADED", "Photo library reloaded from disk")
	s.recomposeLocked(true)
}

func (s *GalleryService) queueNoticeLocked(level types.NoticeLevel, code, message string) {
	if len(s.notices) >= maxQueuedNotices {
		s.notices = s.notices[1:]
	}
	s.notices = append(s.notices, types.Notice{Level: level, Code: code, Message: message})
}

func (s *GalleryService) cleanupBackingImage(photo models.Photo) {
	if s.images == nil {
		return
	}
	const prefix = "/images/"
	if !strings.HasPrefix(photo.URL, prefix) {
		return
	}
	imageID := strings.TrimPrefix(photo.URL, prefix)
	if err := s.images.Delete(imageID); err != nil {
		s.logger.Warn("could not delete backing image",
			zap.String("id", imageID), zap.Error(err))
	}
}
