// README: Shared geographic value objects (coordinates, route metrics).
package types

import "math"

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 position in the canonical (lat, lon) order.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Pair returns the coordinate as a [lat, lon] pair.
func (c Coordinate) Pair() [2]float64 {
	return [2]float64{c.Lat, c.Lon}
}

// RouteMetrics is the driving route between two coordinates.
// Path may be empty when the router omits geometry.
type RouteMetrics struct {
	DistanceKm  float64
	DurationMin float64
	Path        []Coordinate
}

// HaversineKm returns the great-circle distance in kilometres between a and b.
func HaversineKm(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
