package models

import "strings"

// Photo is the sole persisted entity. Collection order is significant:
// index 0 is the most recently added photo.
type Photo struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	Rating   int      `json:"rating,omitempty"`
	Exif     Exif     `json:"exif"`
}

// Exif holds the structured metadata attached to a photo. Exposure fields
// are free text; latitude/longitude are WGS-84 decimal degrees and either
// both present or both absent.
type Exif struct {
	Camera      string   `json:"camera,omitempty"`
	Lens        string   `json:"lens,omitempty"`
	Exposure    string   `json:"exposure,omitempty"`
	Aperture    string   `json:"aperture,omitempty"`
	ISO         string   `json:"iso,omitempty"`
	FocalLength string   `json:"focal_length,omitempty"`
	Date        string   `json:"date,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// GeoCoordinate is an ephemeral lat/lng pair, never persisted with a photo.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsInline reports whether the photo's image bytes are carried inline in
// the URL rather than referenced over the network. Inline payloads are the
// only entries eligible for quota eviction.
func (p Photo) IsInline() bool {
	return strings.HasPrefix(p.URL, "data:")
}

// Coordinate returns the photo's location when both EXIF coordinates are
// present.
func (p Photo) Coordinate() (GeoCoordinate, bool) {
	if p.Exif.Latitude == nil || p.Exif.Longitude == nil {
		return GeoCoordinate{}, false
	}
	return GeoCoordinate{Lat: *p.Exif.Latitude, Lng: *p.Exif.Longitude}, true
}
