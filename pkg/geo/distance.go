// Package geo provides great-circle distance math for the proximity tabs.
package geo

import "math"

const earthRadiusKm = 6371

// SentinelKm is the distance assigned to photos without coordinates so
// they sort after every located photo in either distance direction.
const SentinelKm = math.MaxFloat64

// DistanceKm returns the haversine distance in kilometres between two
// WGS-84 coordinates on a spherical earth. Symmetric up to floating-point
// rounding.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
