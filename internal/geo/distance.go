// Package geo provides great-circle distance math for the lead filter.
package geo

import (
	"math"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	// earthRadiusMiles is the mean Earth radius used by the haversine formula.
	earthRadiusMiles = 3958.7613

	// MetersPerMile converts the configured search radius to the meter radius
	// the Places API expects.
	MetersPerMile = 1609.34
)

// DistanceMiles returns the great-circle distance in miles between two
// resolved coordinates, using the haversine formula on a spherical Earth.
func DistanceMiles(a, b model.Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
