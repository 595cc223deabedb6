// Package estimator computes solar energy production along a vessel route.
// It is a pure transform from a route and panel parameters to an ordered
// time series of power samples; solar position and historic cloud cover are
// supplied through narrow interfaces so the computation is testable without
// network access.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/solarvoyage/pkg/geo"
	"github.com/chrissnell/solarvoyage/pkg/solar"
	"github.com/google/uuid"
)

var (
	// ErrInvalidRoute is returned when the route cannot define a journey
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidParameter is returned when a scalar parameter is out of range
	ErrInvalidParameter = errors.New("invalid parameter")
)

// sampleInterval is the time-series granularity within a segment. Positions
// between waypoints are interpolated at most this far apart in time, with a
// minimum of two samples per segment, so energy integration error stays
// small relative to the sinusoidal altitude model.
const sampleInterval = 10 * time.Minute

// SolarPositioner reports the solar altitude angle in degrees for a place
// and time.
type SolarPositioner interface {
	AltitudeAt(t time.Time, lat, lon float64) float64
}

// CloudProvider reports the historic cloud-cover fraction [0,1] for the UTC
// calendar day containing the given instant. The boolean result reports
// whether data was available; missing data is treated as clear sky.
type CloudProvider interface {
	CloudFraction(ctx context.Context, day time.Time, lat, lon float64) (float64, bool)
}

// standardPositioner adapts the solar package's position algorithm
type standardPositioner struct{}

func (standardPositioner) AltitudeAt(t time.Time, lat, lon float64) float64 {
	return solar.PositionAt(t, lat, lon).ElevationDeg
}

// EstimateRequest carries the route and panel parameters for one estimate.
// It is the explicit configuration object for a run; the estimator holds no
// per-run state.
type EstimateRequest struct {
	Waypoints         []geo.Point `json:"waypoints"`
	StartTime         time.Time   `json:"start_time"`
	SpeedKPH          float64     `json:"speed_kph"`
	PanelAreaM2       float64     `json:"panel_area_m2"`
	EfficiencyKWPerM2 float64     `json:"efficiency_kw_per_m2"`
	CloudAttenuation  bool        `json:"cloud_attenuation"`
}

// Validate checks the request against the estimator's input contract
func (r *EstimateRequest) Validate() error {
	if len(r.Waypoints) < 2 {
		return fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrInvalidRoute, len(r.Waypoints))
	}
	for i, wp := range r.Waypoints {
		if err := wp.Validate(); err != nil {
			return fmt.Errorf("%w: waypoint %d: %v", ErrInvalidRoute, i, err)
		}
	}
	if r.SpeedKPH <= 0 {
		return fmt.Errorf("%w: vessel speed must be > 0 km/h, got %f", ErrInvalidParameter, r.SpeedKPH)
	}
	if r.PanelAreaM2 <= 0 {
		return fmt.Errorf("%w: panel area must be > 0 m², got %f", ErrInvalidParameter, r.PanelAreaM2)
	}
	if r.EfficiencyKWPerM2 <= 0 || r.EfficiencyKWPerM2 > 1 {
		return fmt.Errorf("%w: panel efficiency must be in (0,1] kW/m², got %f", ErrInvalidParameter, r.EfficiencyKWPerM2)
	}
	return nil
}

// Estimator computes journeys. The zero dependencies default to the standard
// solar position algorithm and no cloud data.
type Estimator struct {
	positioner SolarPositioner
	clouds     CloudProvider
}

// New creates an estimator. positioner may be nil to use the standard solar
// position algorithm; clouds may be nil, in which case attenuation requests
// degrade to clear sky.
func New(positioner SolarPositioner, clouds CloudProvider) *Estimator {
	if positioner == nil {
		positioner = standardPositioner{}
	}
	return &Estimator{
		positioner: positioner,
		clouds:     clouds,
	}
}

// Estimate computes the production time series for the requested journey.
// The returned samples are ordered by timestamp and cumulative energy is
// monotonically non-decreasing.
func (e *Estimator) Estimate(ctx context.Context, req EstimateRequest) (*Journey, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	journey := &Journey{
		ID:      uuid.New().String(),
		Request: req,
	}

	start := req.StartTime.UTC()
	segStart := start
	var cumulativeKWH float64
	var totalKm float64

	for i := 0; i+1 < len(req.Waypoints); i++ {
		from, to := req.Waypoints[i], req.Waypoints[i+1]

		distKm := geo.Distance(from, to)
		totalKm += distKm
		duration := time.Duration(distKm / req.SpeedKPH * float64(time.Hour))

		// Minimum two samples so a zero-length segment still contributes
		// its endpoints at the same timestamp.
		n := int(math.Ceil(duration.Minutes()/sampleInterval.Minutes())) + 1
		if n < 2 {
			n = 2
		}
		track := geo.Track(from, to, n)
		step := duration / time.Duration(n-1)

		for j := 0; j < n; j++ {
			// Segment boundaries share a sample with the previous segment
			if i > 0 && j == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			ts := segStart.Add(time.Duration(j) * step)
			sample := e.sampleAt(ctx, req, ts, track[j])

			// Left-Riemann integration: the previous sample's power holds
			// until this one.
			if len(journey.Samples) > 0 {
				prev := journey.Samples[len(journey.Samples)-1]
				cumulativeKWH += prev.PowerKW * ts.Sub(prev.Timestamp).Hours()
			}
			sample.CumulativeKWH = cumulativeKWH
			journey.Samples = append(journey.Samples, sample)
		}

		segStart = segStart.Add(duration)
	}

	journey.StartTime = start
	journey.EndTime = segStart
	journey.DistanceKm = totalKm
	journey.TotalKWH = cumulativeKWH
	journey.Days = DailyBreakdown(journey.Samples)

	return journey, nil
}

func (e *Estimator) sampleAt(ctx context.Context, req EstimateRequest, ts time.Time, pos geo.Point) TimeSample {
	altitude := e.positioner.AltitudeAt(ts, pos.Lat, pos.Lon)

	var cloudFraction float64
	if req.CloudAttenuation && e.clouds != nil {
		cloudFraction, _ = e.clouds.CloudFraction(ctx, ts, pos.Lat, pos.Lon)
	}

	factor := solar.ProductionFactor(altitude) * (1 - cloudFraction)
	power := req.PanelAreaM2 * req.EfficiencyKWPerM2 * factor
	if power < 0 {
		power = 0
	}

	return TimeSample{
		Timestamp:     ts,
		Position:      pos,
		AltitudeDeg:   altitude,
		CloudFraction: cloudFraction,
		PowerKW:       power,
	}
}
