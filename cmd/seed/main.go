package main

import (
	"bytes"
	"encoding/base64"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jaswdr/faker"
	"go.uber.org/zap"

	"photofeed/pkg/config"
	"photofeed/pkg/errors"
	"photofeed/pkg/models"
	"photofeed/pkg/storage"
	"photofeed/pkg/utils"
)

var cameras = []string{
	"Nikon Z 7II",
	"Canon EOS R5",
	"Sony A7 IV",
	"Fujifilm X-T5",
	"Ricoh GR III",
	"Olympus OM-D E-M1 III",
}

var apertures = []string{"f/1.8", "f/2.8", "f/4", "f/5.6", "f/8", "f/11"}

var exposures = []string{"1/60s", "1/125s", "1/250s", "1/500s", "1/1000s"}

var swatches = []color.NRGBA{
	{R: 0x2d, G: 0x6a, B: 0x4f, A: 0xff},
	{R: 0xbc, G: 0x4b, B: 0x51, A: 0xff},
	{R: 0x3a, G: 0x5a, B: 0x98, A: 0xff},
	{R: 0xe9, G: 0xc4, B: 0x6a, A: 0xff},
}

func main() {
	count := flag.Int("count", 24, "number of photos to generate")
	dataDir := flag.String("data", "", "data directory (defaults to the configured one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
		if result := errors.NewValidator().ValidateDirectoryPath(cfg.GalleryPath()); !result.IsValid {
			fmt.Fprintf(os.Stderr, "Invalid data directory: %v\n", result.GetFirstError())
			os.Exit(1)
		}
	}

	store := storage.NewGalleryStore(cfg.GalleryPath(), cfg.QuotaBytes, zap.NewNop())
	defer store.Close()

	result, err := store.Save(generate(*count))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write gallery: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d photos to %s\n", len(result.Photos), cfg.GalleryPath())
}

func generate(n int) []models.Photo {
	f := faker.New()
	categories := []models.Category{
		models.CategoryLandscape,
		models.CategoryPortrait,
		models.CategoryStreet,
		models.CategoryMacro,
	}

	photos := make([]models.Photo, 0, n)
	for i := 0; i < n; i++ {
		id := utils.NewPhotoID()

		width, height := 1600, 1067
		if f.Bool() {
			width, height = height, width
		}

		url := fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", id, width, height)
		// Every sixth entry carries its pixels inline, giving a tight
		// quota something to evict.
		if i%6 == 5 {
			width, height = 64, 64
			url = inlineURL(swatches[f.IntBetween(0, len(swatches)-1)])
		}

		exif := models.Exif{
			Camera:      f.RandomStringElement(cameras),
			Exposure:    f.RandomStringElement(exposures),
			Aperture:    f.RandomStringElement(apertures),
			ISO:         fmt.Sprintf("%d", f.IntBetween(1, 32)*100),
			FocalLength: fmt.Sprintf("%dmm", f.IntBetween(16, 200)),
			Date:        time.Now().AddDate(0, 0, -f.IntBetween(0, 720)).Format("2006-01-02"),
		}
		// Roughly a third of the collection stays coordless so proximity
		// tabs have sentinel entries to sort last.
		if f.IntBetween(0, 2) > 0 {
			lat := f.Address().Latitude()
			lng := f.Address().Longitude()
			exif.Latitude = &lat
			exif.Longitude = &lng
		}

		photos = append(photos, models.Photo{
			ID:       id,
			URL:      url,
			Title:    strings.TrimSuffix(f.Lorem().Sentence(3), "."),
			Category: categories[f.IntBetween(0, len(categories)-1)],
			Width:    width,
			Height:   height,
			Rating:   f.IntBetween(0, 5),
			Exif:     exif,
		})
	}
	return photos
}

func inlineURL(c color.NRGBA) string {
	var buf bytes.Buffer
	imaging.Encode(&buf, imaging.New(64, 64, c), imaging.JPEG)
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
