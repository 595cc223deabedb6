package solar

import (
	"math"
	"testing"
	"time"
)

func TestPositionAt(t *testing.T) {
	tests := []struct {
		name         string
		when         time.Time
		lat, lon     float64
		minElevation float64
		maxElevation float64
	}{
		{
			name:         "Equator at noon on March equinox, near zenith",
			when:         time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			lat:          0,
			lon:          0,
			minElevation: 84,
			maxElevation: 91,
		},
		{
			name:         "Equator at noon on June solstice, sun over Tropic of Cancer",
			when:         time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
			lat:          0,
			lon:          0,
			minElevation: 63,
			maxElevation: 69,
		},
		{
			name:         "Equator at midnight, sun below horizon",
			when:         time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			lat:          0,
			lon:          0,
			minElevation: -95,
			maxElevation: -60,
		},
		{
			name:         "London summer morning, sun up",
			when:         time.Date(2024, 6, 21, 9, 0, 0, 0, time.UTC),
			lat:          51.5,
			lon:          -0.1,
			minElevation: 30,
			maxElevation: 60,
		},
		{
			name:         "Tromsø winter noon, polar night",
			when:         time.Date(2024, 12, 21, 11, 0, 0, 0, time.UTC),
			lat:          69.6,
			lon:          18.9,
			minElevation: -10,
			maxElevation: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := PositionAt(tt.when, tt.lat, tt.lon)
			if pos.ElevationDeg < tt.minElevation || pos.ElevationDeg > tt.maxElevation {
				t.Errorf("elevation = %.2f°, expected within [%.1f, %.1f]",
					pos.ElevationDeg, tt.minElevation, tt.maxElevation)
			}
		})
	}
}

func TestPositionDeclinationRange(t *testing.T) {
	// Declination stays within ±23.5° (plus a small margin) all year
	for doy := 0; doy < 365; doy += 5 {
		when := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, doy)
		pos := PositionAt(when, 45, 0)
		if math.Abs(pos.DeclinationDeg) > 23.6 {
			t.Errorf("%s: declination %.2f° outside solar band", when.Format("2006-01-02"), pos.DeclinationDeg)
		}
	}
}

func TestProductionFactor(t *testing.T) {
	tests := []struct {
		name      string
		elevation float64
		expect    float64
		tolerance float64
	}{
		{"Below horizon clamps to zero", -10, 0, 0},
		{"At horizon clamps to zero", 0, 0, 0},
		{"Thirty degrees", 30, 0.5, 1e-9},
		{"Forty-five degrees", 45, math.Sqrt2 / 2, 1e-9},
		{"Zenith gives full output", 90, 1, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductionFactor(tt.elevation)
			if math.Abs(got-tt.expect) > tt.tolerance {
				t.Errorf("ProductionFactor(%f) = %f, expected %f", tt.elevation, got, tt.expect)
			}
		})
	}
}

func TestProductionFactorMonotonic(t *testing.T) {
	prev := -1.0
	for el := 0.0; el <= 90.0; el += 1.0 {
		f := ProductionFactor(el)
		if f < prev {
			t.Fatalf("production factor decreased at elevation %f: %f < %f", el, f, prev)
		}
		if f < 0 || f > 1 {
			t.Fatalf("production factor %f outside [0,1] at elevation %f", f, el)
		}
		prev = f
	}
}
