package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		from      Point
		to        Point
		expectKm  float64
		tolerance float64
	}{
		{
			name:      "One degree of longitude at the equator",
			from:      Point{Lat: 0, Lon: 0},
			to:        Point{Lat: 0, Lon: 1},
			expectKm:  111.19,
			tolerance: 0.5,
		},
		{
			name:      "One degree of latitude",
			from:      Point{Lat: 10, Lon: 20},
			to:        Point{Lat: 11, Lon: 20},
			expectKm:  111.19,
			tolerance: 0.5,
		},
		{
			name:      "London to New York",
			from:      Point{Lat: 51.5074, Lon: -0.1278},
			to:        Point{Lat: 40.7128, Lon: -74.0060},
			expectKm:  5570,
			tolerance: 50,
		},
		{
			name:      "Zero displacement",
			from:      Point{Lat: 45, Lon: 45},
			to:        Point{Lat: 45, Lon: 45},
			expectKm:  0,
			tolerance: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.from, tt.to)
			if math.Abs(got-tt.expectKm) > tt.tolerance {
				t.Errorf("Distance() = %f km, expected %f ± %f", got, tt.expectKm, tt.tolerance)
			}
		})
	}
}

func TestTrack(t *testing.T) {
	from := Point{Lat: 0, Lon: 0}
	to := Point{Lat: 0, Lon: 1}

	track := Track(from, to, 5)
	if len(track) != 5 {
		t.Fatalf("expected 5 track points, got %d", len(track))
	}
	if track[0] != from {
		t.Errorf("track should start at %v, got %v", from, track[0])
	}
	if track[4] != to {
		t.Errorf("track should end at %v, got %v", to, track[4])
	}
	if math.Abs(track[2].Lon-0.5) > 1e-9 {
		t.Errorf("midpoint longitude = %f, expected 0.5", track[2].Lon)
	}

	// Fewer than two points is clamped to the segment endpoints
	track = Track(from, to, 0)
	if len(track) != 2 {
		t.Errorf("expected clamp to 2 points, got %d", len(track))
	}
}

func TestRouteDistance(t *testing.T) {
	waypoints := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 0, Lon: 2},
	}
	got := RouteDistance(waypoints)
	want := 2 * Distance(waypoints[0], waypoints[1])
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RouteDistance() = %f, expected %f", got, want)
	}

	if d := RouteDistance([]Point{{Lat: 1, Lon: 1}}); d != 0 {
		t.Errorf("single-waypoint route distance = %f, expected 0", d)
	}
}

func TestPointValidate(t *testing.T) {
	valid := []Point{{0, 0}, {-90, 180}, {90, -180}, {47.6, -122.3}}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%v) returned unexpected error: %v", p, err)
		}
	}

	invalid := []Point{{91, 0}, {-90.1, 0}, {0, 181}, {0, -180.5}}
	for _, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%v) should have failed", p)
		}
	}
}
