// Package geo provides great-circle distance and track interpolation for
// vessel routes expressed as ordered waypoints.
package geo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Point is a position on the Earth's surface in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180.0 }

// Validate checks that the point lies within valid coordinate ranges
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90,90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180,180]", p.Lon)
	}
	return nil
}

// Distance returns the great-circle distance between two points in kilometers,
// computed with the haversine formula.
func Distance(from, to Point) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1
	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * δ
}

// Track returns n evenly spaced points from one endpoint of a segment to the
// other, endpoints included. Coordinates are interpolated linearly, which is
// adequate at the sub-segment scale routes are sampled at.
func Track(from, to Point, n int) []Point {
	if n < 2 {
		n = 2
	}

	lats := floats.Span(make([]float64, n), from.Lat, to.Lat)
	lons := floats.Span(make([]float64, n), from.Lon, to.Lon)

	track := make([]Point, n)
	for i := range track {
		track[i] = Point{Lat: lats[i], Lon: lons[i]}
	}
	return track
}

// RouteDistance returns the total great-circle length of an ordered waypoint
// sequence in kilometers.
func RouteDistance(waypoints []Point) float64 {
	var total float64
	for i := 0; i+1 < len(waypoints); i++ {
		total += Distance(waypoints[i], waypoints[i+1])
	}
	return total
}
