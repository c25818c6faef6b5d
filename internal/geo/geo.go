// Package geo holds the planar math used by proximity rules: great-circle
// distance, unit conversion and coarse geocell keys for cache lookups.
package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusM = 6371000.0
	feetPerMeter = 3.28084
)

// DistanceMeters returns the haversine distance between two WGS84 points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusM * c
}

func MetersToFeet(m float64) float64 {
	return m * feetPerMeter
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CellKey buckets a point into a ~100m grid cell, so nearby queries share
// a cache entry per dataset. The query radius is part of the key: cached
// rows only cover the radius they were fetched with, and serving a wider
// request from a narrower fetch would silently drop candidates.
func CellKey(dataset string, lat, lon float64, radiusM int) string {
	return fmt.Sprintf("%s:%.3f:%.3f:r%d", dataset, lat, lon, radiusM)
}

// BoundingBox returns a lat/lon box of radiusM meters around a point.
// Longitude scale degenerates near the poles; clamp like the upstream
// query builder expects.
func BoundingBox(lat, lon float64, radiusM int) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := float64(radiusM) / 111000
	lonScale := math.Max(math.Cos(radians(lat)), 0.1)
	lonDelta := float64(radiusM) / (111000 * lonScale)
	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}
