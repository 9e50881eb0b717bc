package geo

import (
	"math"
	"time"
)

// Axial tilt of the earth in degrees.
const axialTilt = 23.44

// SolarDeclination returns the latitude, in degrees, of the sub-solar point
// at t.
func SolarDeclination(t time.Time) float64 {
	t = t.UTC()
	day := float64(t.YearDay()) + float64(t.Hour())/24
	return -axialTilt * math.Cos(2*math.Pi/365*(day+10))
}

// SubsolarPoint returns the coordinate where the sun is directly overhead
// at t.
func SubsolarPoint(t time.Time) (lat, lon float64) {
	t = t.UTC()
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	lon = -15 * (hours - 12)
	return SolarDeclination(t), normalizeLon(lon)
}

// IsDaylit reports whether the sun is above the horizon at (lat, lon) at
// time t.
func IsDaylit(lat, lon float64, t time.Time) bool {
	lat, lon = Clamp(lat, lon)
	sunLat, sunLon := SubsolarPoint(t)

	phi := lat * math.Pi / 180
	delta := sunLat * math.Pi / 180
	h := (lon - sunLon) * math.Pi / 180

	cosZenith := math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Cos(h)
	return cosZenith > 0
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
