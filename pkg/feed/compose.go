// Package feed computes the visible photo stream from the canonical
// collection and meters how much of it is revealed. Composition is
// pure: inputs in, fresh slice out, nothing mutated and nothing
// remembered between calls.
package feed

import (
	"math/rand"
	"sort"

	"photofeed/pkg/geo"
	"photofeed/pkg/models"
)

// Compose filters the collection by category, then orders it for the
// active tab. The input slice is never modified and the result is
// always a fresh slice, even when it comes out in the same order.
func Compose(photos []models.Photo, category models.Category, tab models.TabMode, origin *models.GeoCoordinate, epoch uint64) []models.Photo {
	filtered := filterByCategory(photos, category)

	switch tab {
	case models.TabCurated:
		return curated(filtered)
	case models.TabShuffle:
		return shuffled(filtered, epoch)
	case models.TabNearby:
		return byDistance(filtered, origin, true)
	case models.TabFaraway:
		return byDistance(filtered, origin, false)
	default:
		// Latest keeps the canonical newest-first order.
		return filtered
	}
}

// DistanceFrom returns the great-circle distance from origin to the
// photo's capture point, or geo.SentinelKm when the photo carries no
// coordinates. The sentinel ranks coordless photos behind every located
// one on both proximity tabs.
func DistanceFrom(p models.Photo, origin models.GeoCoordinate) float64 {
	coord, ok := p.Coordinate()
	if !ok {
		return geo.SentinelKm
	}
	return geo.DistanceKm(origin.Lat, origin.Lng, coord.Lat, coord.Lng)
}

func filterByCategory(photos []models.Photo, category models.Category) []models.Photo {
	out := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if matchesCategory(p, category) {
			out = append(out, p)
		}
	}
	return out
}

func matchesCategory(p models.Photo, category models.Category) bool {
	switch category {
	case models.FilterAll, "":
		return true
	case models.FilterHorizontal:
		return p.Width >= p.Height
	case models.FilterVertical:
		return p.Height > p.Width
	default:
		return p.Category == category
	}
}

func curated(photos []models.Photo) []models.Photo {
	out := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if p.Rating >= 4 {
			out = append(out, p)
		}
	}
	// Stable, so equally rated photos keep their collection order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

// shuffled applies the permutation seeded by the shuffle epoch. The same
// epoch over the same photos always produces the same order, so the tab
// only reshuffles when the epoch is bumped.
func shuffled(photos []models.Photo, epoch uint64) []models.Photo {
	out := make([]models.Photo, len(photos))
	copy(out, photos)

	rng := rand.New(rand.NewSource(int64(epoch)))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

type distanced struct {
	photo models.Photo
	km    float64
}

func byDistance(photos []models.Photo, origin *models.GeoCoordinate, nearestFirst bool) []models.Photo {
	out := make([]models.Photo, len(photos))
	copy(out, photos)
	if origin == nil {
		// No origin yet: leave the order alone rather than guess.
		return out
	}

	pairs := make([]distanced, len(out))
	for i, p := range out {
		pairs[i] = distanced{photo: p, km: DistanceFrom(p, *origin)}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i].km, pairs[j].km
		if a == geo.SentinelKm || b == geo.SentinelKm {
			return b == geo.SentinelKm && a != geo.SentinelKm
		}
		if nearestFirst {
			return a < b
		}
		return a > b
	})
	for i, pair := range pairs {
		out[i] = pair.photo
	}
	return out
}
