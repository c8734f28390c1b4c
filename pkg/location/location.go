// Package location resolves the user's coordinates for the proximity
// tabs. A Source answers a single query; the Resolver caches the first
// success for the session and classifies every failure.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"photofeed/pkg/errors"
	"photofeed/pkg/models"
)

// QueryOptions carries the policy for a single location query.
type QueryOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

/// DefaultQueryOptions is the engine's fixed policy: coarse accuracy, a
// five second ceiling, and platform fixes up to a minute old.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		HighAccuracy: false,
		Timeout:      5 * time.Second,
		MaximumAge:   60 * time.Second,
	}
}

// Source is the platform location collaborator.
type Source interface {
	// Available reports whether the platform can answer location
	// queries at all.
	Available() bool
	// Current returns the device's coordinates under the given policy.
	Current(ctx context.Context, opts QueryOptions) (models.GeoCoordinate, error)
}

// StaticSource serves a fixed coordinate from configuration, for
// deployments that know where they are.
type StaticSource struct {
	coord models.GeoCoordinate
}

// NewStaticSource creates a source pinned to the given coordinate.
func NewStaticSource(lat, lng float64) *StaticSource {
	return &StaticSource{coord: models.GeoCoordinate{Lat: lat, Lng: lng}}
}

// Available implements Source.
func (s *StaticSource) Available() bool {
	return true
}

// Current implements Source.
func (s *StaticSource) Current(_ context.Context, _ QueryOptions) (models.GeoCoordinate, error) {
	return s.coord, nil
}

// IPSource answers location queries through a coarse IP-geolocation HTTP
// endpoint speaking the ip-api.com JSON shape. MaximumAge is meaningless
// for IP lookups and is ignored.
type IPSource struct {
	endpoint string
	client   *http.Client
}

// NewIPSource creates a source against the given endpoint. An empty
// endpoint makes the source unavailable.
func NewIPSource(endpoint string) *IPSource {
	return &IPSource{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Available implements Source.
func (s *IPSource) Available() bool {
	return s.endpoint != ""
}

// Current implements Source.
func (s *IPSource) Current(ctx context.Context, opts QueryOptions) (models.GeoCoordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return models.GeoCoordinate{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.GeoCoordinate{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return models.GeoCoordinate{}, errors.ErrLocationPermission.
			WithContext("status", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return models.GeoCoordinate{}, errors.ErrLocationUnavailable.
			WithContext("status", resp.StatusCode)
	}

	var body struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.GeoCoordinate{}, errors.ErrLocationUnknown.WithInternal(err)
	}
	if body.Status != "" && body.Status != "success" {
		return models.GeoCoordinate{}, errors.ErrLocationUnavailable.
			WithInternal(fmt.Errorf("endpoint reported %q: %s", body.Status, body.Message))
	}

	return models.GeoCoordinate{Lat: body.Lat, Lng: body.Lon}, nil
}
