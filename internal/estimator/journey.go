package estimator

import (
	"sort"
	"time"

	"github.com/chrissnell/solarvoyage/pkg/geo"
	"github.com/chrissnell/solarvoyage/pkg/solar"
)

// TimeSample is one point of the production time series. Samples are
// immutable once computed and ordered by timestamp.
type TimeSample struct {
	Timestamp     time.Time `json:"timestamp"`
	Position      geo.Point `json:"position"`
	AltitudeDeg   float64   `json:"altitude_deg"`
	CloudFraction float64   `json:"cloud_fraction"`
	PowerKW       float64   `json:"power_kw"`
	CumulativeKWH float64   `json:"cumulative_kwh"`
}

// Journey is the full result of one estimate run
type Journey struct {
	ID         string          `json:"id"`
	Request    EstimateRequest `json:"request"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	DistanceKm float64         `json:"distance_km"`
	TotalKWH   float64         `json:"total_kwh"`
	Samples    []TimeSample    `json:"samples"`
	Days       []DayBreakdown  `json:"days"`
}

// DayBreakdown summarizes one UTC calendar day of the journey. Sunrise and
// sunset are nil under polar conditions.
type DayBreakdown struct {
	Date          string     `json:"date"`
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
	CloudFraction float64    `json:"cloud_fraction"`
	EnergyKWH     float64    `json:"energy_kwh"`
}

// DailyBreakdown groups an ordered sample series into per-day summaries,
// with sunrise and sunset computed at the vessel's position that day.
func DailyBreakdown(samples []TimeSample) []DayBreakdown {
	var days []DayBreakdown
	var prevCumulative float64

	for i := 0; i < len(samples); {
		date := samples[i].Timestamp.UTC().Format("2006-01-02")
		j := i
		for j < len(samples) && samples[j].Timestamp.UTC().Format("2006-01-02") == date {
			j++
		}

		first, last := samples[i], samples[j-1]
		day := DayBreakdown{
			Date:          date,
			CloudFraction: first.CloudFraction,
			EnergyKWH:     last.CumulativeKWH - prevCumulative,
		}
		if sunrise, sunset, ok := solar.Daylight(first.Timestamp, first.Position.Lat, first.Position.Lon); ok {
			day.Sunrise, day.Sunset = &sunrise, &sunset
		}

		days = append(days, day)
		prevCumulative = last.CumulativeKWH
		i = j
	}

	return days
}

// SampleAt resolves a timestamp to the nearest sample. This backs the
// display surface's graph-to-map selection: pick a time on the production
// graph, get back the vessel position it corresponds to.
func (j *Journey) SampleAt(t time.Time) (TimeSample, bool) {
	if len(j.Samples) == 0 {
		return TimeSample{}, false
	}

	i := sort.Search(len(j.Samples), func(i int) bool {
		return !j.Samples[i].Timestamp.Before(t)
	})

	if i == 0 {
		return j.Samples[0], true
	}
	if i == len(j.Samples) {
		return j.Samples[len(j.Samples)-1], true
	}

	before, after := j.Samples[i-1], j.Samples[i]
	if t.Sub(before.Timestamp) <= after.Timestamp.Sub(t) {
		return before, true
	}
	return after, true
}

// Duration returns the elapsed time of the journey
func (j *Journey) Duration() time.Duration {
	return j.EndTime.Sub(j.StartTime)
}
