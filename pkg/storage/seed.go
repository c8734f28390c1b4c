package storage

import "photofeed/pkg/models"

// SeedGallery returns the built-in collection used whenever the gallery
// slot is missing or unreadable. All entries are network references so
// the seed itself can never trip the quota. Order is most-recent-first,
// like any persisted collection.
func SeedGallery() []models.Photo {
	return []models.Photo{
		{
			ID:       "b51f0e2a",
			URL:      "https://picsum.photos/id/1018/1600/1067",
			Title:    "Matterhorn at first light",
			Category: models.CategoryLandscape,
			Width:    1600,
			Height:   1067,
			Rating:   5,
			Exif: models.Exif{
				Camera:      "Nikon Z 7II",
				Lens:        "NIKKOR Z 24-70mm f/2.8 S",
				Exposure:    "1/250s",
				Aperture:    "f/8",
				ISO:         "64",
				FocalLength: "35mm",
				Date:        "2024-09-14",
				Latitude:    f64(45.9763),
				Longitude:   f64(7.6586),
			},
		},
		{
			ID:       "7c29ad43",
			URL:      "https://picsum.photos/id/1025/1600/1067",
			Title:    "Street dog, Lisbon",
			Category: models.CategoryStreet,
			Width:    1600,
			Height:   1067,
			Rating:   3,
			Exif: models.Exif{
				Camera:      "Fujifilm X100V",
				Exposure:    "1/500s",
				Aperture:    "f/4",
				ISO:         "320",
				FocalLength: "23mm",
				Date:        "2024-06-02",
				Latitude:    f64(38.7223),
				Longitude:   f64(-9.1393),
			},
		},
		{
			ID:       "e030cc91",
			URL:      "https://picsum.photos/id/1069/1067/1600",
			Title:    "Dew on a spider web",
			Category: models.CategoryMacro,
			Width:    1067,
			Height:   1600,
			Rating:   4,
			Exif: models.Exif{
				Camera:      "Sony A7R IV",
				Lens:        "FE 90mm f/2.8 Macro G OSS",
				Exposure:    "1/160s",
				Aperture:    "f/5.6",
				ISO:         "400",
				FocalLength: "90mm",
				Date:        "2024-05-21",
			},
		},
		{
			ID:       "420d9f1b",
			URL:      "https://picsum.photos/id/177/1600/1067",
			Title:    "Harbour fog, Hamburg",
			Category: models.CategoryLandscape,
			Width:    1600,
			Height:   1067,
			Rating:   4,
			Exif: models.Exif{
				Camera:      "Canon EOS R5",
				Lens:        "RF 70-200mm f/4L IS USM",
				Exposure:    "1/800s",
				Aperture:    "f/7.1",
				ISO:         "100",
				FocalLength: "135mm",
				Date:        "2024-02-11",
				Latitude:    f64(53.5461),
				Longitude:   f64(9.9661),
			},
		},
		{
			ID:       "9a77b3c5",
			URL:      "https://picsum.photos/id/338/1067/1600",
			Title:    "Portrait by the window",
			Category: models.CategoryPortrait,
			Width:    1067,
			Height:   1600,
			Rating:   5,
			Exif: models.Exif{
				Camera:      "Sony A7 III",
				Lens:        "FE 85mm f/1.8",
				Exposure:    "1/200s",
				Aperture:    "f/2",
				ISO:         "200",
				FocalLength: "85mm",
				Date:        "2023-12-03",
			},
		},
		{
			ID:       "1d65e8f2",
			URL:      "https://picsum.photos/id/431/1600/1067",
			Title:    "Tram lines, Zurich",
			Category: models.CategoryStreet,
			Width:    1600,
			Height:   1067,
			Rating:   2,
			Exif: models.Exif{
				Camera:      "Ricoh GR III",
				Exposure:    "1/320s",
				Aperture:    "f/5.6",
				ISO:         "800",
				FocalLength: "28mm",
				Date:        "2023-10-19",
				Latitude:    f64(47.3769),
				Longitude:   f64(8.5417),
			},
		},
		{
			ID:       "f4b82c07",
			URL:      "https://picsum.photos/id/583/1600/1067",
			Title:    "Frost on beech leaves",
			Category: models.CategoryMacro,
			Width:    1600,
			Height:   1067,
			Exif: models.Exif{
				Camera:      "Olympus OM-D E-M1 III",
				Lens:        "M.Zuiko 60mm f/2.8 Macro",
				Exposure:    "1/125s",
				Aperture:    "f/4",
				ISO:         "640",
				FocalLength: "60mm",
				Date:        "2023-11-27",
			},
		},
		{
			ID:       "8e11da6c",
			URL:      "https://picsum.photos/id/653/1600/1067",
			Title:    "Dunes before the storm",
			Category: models.CategoryLandscape,
			Width:    1600,
			Height:   1067,
			Rating:   4,
			Exif: models.Exif{
				Camera:      "Nikon D850",
				Lens:        "AF-S 16-35mm f/4G ED VR",
				Exposure:    "1/60s",
				Aperture:    "f/11",
				ISO:         "100",
				FocalLength: "16mm",
				Date:        "2023-08-30",
				Latitude:    f64(27.7097),
				Longitude:   f64(-15.5840),
			},
		},
	}
}

func f64(v float64) *float64 {
	return &v
}
