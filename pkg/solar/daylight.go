package solar

import (
	"math"
	"time"
)

// Daylight returns sunrise and sunset in UTC for the calendar day containing
// t at the given location. ok is false under polar conditions, when the sun
// never crosses the horizon that day.
func Daylight(t time.Time, lat, lon float64) (sunrise, sunset time.Time, ok bool) {
	utc := t.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	noon := midnight.Add(12 * time.Hour)

	pos := PositionAt(noon, lat, lon)
	declRad := degToRad(pos.DeclinationDeg)
	latRad := degToRad(lat)

	// Hour angle at the horizon crossing: cos(H) = -tan(lat)·tan(decl)
	cosH := -math.Tan(latRad) * math.Tan(declRad)
	if cosH < -1.0 || cosH > 1.0 {
		// Midnight sun or polar night
		return time.Time{}, time.Time{}, false
	}

	hourAngleMin := radToDeg(math.Acos(cosH)) * 4 // 4 minutes of time per degree

	// Solar noon in UTC, shifted by longitude and the equation of time
	solarNoonMin := 720.0 - 4.0*lon - pos.EqOfTimeMin

	sunrise = midnight.Add(time.Duration((solarNoonMin - hourAngleMin) * float64(time.Minute)))
	sunset = midnight.Add(time.Duration((solarNoonMin + hourAngleMin) * float64(time.Minute)))
	return sunrise, sunset, true
}
