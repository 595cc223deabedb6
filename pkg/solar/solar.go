// Package solar computes the apparent position of the sun for a given place
// and time, and maps solar altitude to a panel production factor.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Position describes the apparent position of the sun
type Position struct {
	ElevationDeg   float64
	AzimuthDeg     float64
	DeclinationDeg float64
	EqOfTimeMin    float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// PositionAt returns the apparent solar position at the given instant for a
// location in decimal degrees. Elevation includes a fixed refraction
// correction, so values slightly above the geometric horizon are possible
// around sunrise and sunset.
func PositionAt(t time.Time, lat, lon float64) Position {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	Ω := 125.04 - 1934.136*T
	λ := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(Ω))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	δRad := math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(λ)))

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	utc := t.UTC()
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*lon + eqTimeMin
	ha := tst/4 - 180
	haRad := degToRad(ha)

	latRad := degToRad(lat)
	cosZen := math.Sin(latRad)*math.Sin(δRad) + math.Cos(latRad)*math.Cos(δRad)*math.Cos(haRad)
	zenRad := math.Acos(cosZen)
	zenDeg := radToDeg(zenRad)
	elDeg := 90 - zenDeg + 0.5667

	pos := Position{
		ElevationDeg:   elDeg,
		DeclinationDeg: radToDeg(δRad),
		EqOfTimeMin:    eqTimeMin,
	}

	if elDeg <= 0 {
		return pos
	}

	azNum := math.Sin(δRad) - math.Sin(latRad)*cosZen
	azDen := math.Cos(latRad) * math.Sin(zenRad)
	if azDen != 0 {
		ratio := azNum / azDen
		if ratio > 1 {
			ratio = 1
		} else if ratio < -1 {
			ratio = -1
		}
		azDeg := radToDeg(math.Acos(ratio))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
		pos.AzimuthDeg = azDeg
	}

	return pos
}

// ProductionFactor maps solar altitude to a dimensionless panel output
// multiplier: 0 with the sun at or below the horizon, 1 at zenith, varying
// sinusoidally in between.
func ProductionFactor(elevationDeg float64) float64 {
	if elevationDeg <= 0 {
		return 0
	}
	return math.Sin(degToRad(elevationDeg))
}
