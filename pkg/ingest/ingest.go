// Package ingest turns raw uploads into gallery photos: metadata comes
// out of the EXIF block before the pixels are touched, the image is
// resized for the feed, and the payload lands inline or in the image
// store depending on how big it came out.
package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
	"photofeed/pkg/storage"
	"photofeed/pkg/utils"
)

const (
	// Feed images are bounded to this edge length; larger uploads are
	// scaled down, smaller ones left alone.
	maxFeedEdge = 1600

	jpegQuality = 80

	// Encodings up to this size embed directly in the photo URL as a
	// data URL. Anything larger goes to the image store and is served
	// by reference, which keeps the gallery slot small.
	inlineLimit = 256 * 1024
)

// Pipeline converts uploads into feed-ready photos.
type Pipeline struct {
	images *storage.ImageStore
	logger *zap.Logger
}

// NewPipeline creates an ingest pipeline backed by the given image
// store.
func NewPipeline(images *storage.ImageStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{images: images, logger: logger}
}

// Ingest builds a photo from one uploaded file. The EXIF block is read
// from the original bytes, since resizing strips it. An empty title
// falls back to the filename, an empty category to landscape.
func (p *Pipeline) Ingest(data []byte, filename, title string, category models.Category) (models.Photo, error) {
	meta := extractExif(data)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Photo{}, errors.ErrNotAnImage.WithInternal(err).WithContext("filename", filename)
	}

	img = imaging.Fit(img, maxFeedEdge, maxFeedEdge, imaging.Lanczos)
	bounds := img.Bounds()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return models.Photo{}, errors.Wrap(err, errors.ErrTypeIO, "IMAGE_ENCODE_FAILED", "could not encode feed image").
			WithUserMessage("This image could not be processed")
	}
	encoded := buf.Bytes()

	url, err := p.placePayload(encoded, filename)
	if err != nil {
		return models.Photo{}, err
	}

	if strings.TrimSpace(title) == "" {
		title = titleFromFilename(filename)
	}
	if !category.Storable() {
		category = models.CategoryLandscape
	}

	photo := models.Photo{
		ID:       utils.NewPhotoID(),
		URL:      url,
		Title:    title,
		Category: category,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Exif:     meta,
	}

	p.logger.Info("upload ingested",
		zap.String("id", photo.ID),
		zap.String("filename", filename),
		zap.Int("bytes", len(encoded)),
		zap.Bool("inline", photo.IsInline()))
	return photo, nil
}

// placePayload embeds small encodings as a data URL and hands larger
// ones to the image store. Store writes are transient-retryable.
func (p *Pipeline) placePayload(encoded []byte, filename string) (string, error) {
	if len(encoded) <= inlineLimit || p.images == nil {
		return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded), nil
	}

	var stored *models.ImageFile
	retry := errors.NewRetryHandler(3)
	err := retry.Execute(func() error {
		var storeErr error
		stored, storeErr = p.images.Store(encoded, "image/jpeg", filename)
		if storeErr != nil {
			return errors.ErrFileWriteFailed.WithInternal(storeErr).WithContext("filename", filename)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.Log(p.logger)
		}
		return "", err
	}

	return "/images/" + stored.ID, nil
}

// extractExif pulls what metadata it can from the original upload.
// Missing or unreadable EXIF is normal, not an error.
func extractExif(data []byte) models.Exif {
	meta := models.Exif{}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return meta
	}

	if lat, lng, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lng
	}
	if dt, err := x.DateTime(); err == nil {
		meta.Date = dt.Format("2006-01-02")
	}

	meta.Camera = stringTag(x, exif.Model)
	meta.Lens = stringTag(x, exif.LensModel)
	meta.Exposure = exposureTag(x)
	meta.Aperture = apertureTag(x)
	meta.ISO = isoTag(x)
	meta.FocalLength = focalTag(x)
	return meta
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func exposureTag(x *exif.Exif) string {
	num, den, ok := ratTag(x, exif.ExposureTime)
	if !ok {
		return ""
	}
	if num == 1 {
		return fmt.Sprintf("1/%ds", den)
	}
	return fmt.Sprintf("%.1fs", float64(num)/float64(den))
}

func apertureTag(x *exif.Exif) string {
	num, den, ok := ratTag(x, exif.FNumber)
	if !ok {
		return ""
	}
	return fmt.Sprintf("f/%.1f", float64(num)/float64(den))
}

func focalTag(x *exif.Exif) string {
	num, den, ok := ratTag(x, exif.FocalLength)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.0fmm", float64(num)/float64(den))
}

func isoTag(x *exif.Exif) string {
	tag, err := x.Get(exif.ISOSpeedRatings)
	if err != nil {
		return ""
	}
	v, err := tag.Int(0)
	if err != nil {
		return ""
	}
	return strconv.Itoa(v)
}

func ratTag(x *exif.Exif, name exif.FieldName) (num, den int64, ok bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, 0, false
	}
	num, den, err = tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, 0, false
	}
	return num, den, true
}

func titleFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		return "Untitled"
	}
	return base
}
