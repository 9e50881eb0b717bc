// Package geo converts between geographic coordinates and equirectangular
// raster space, and answers simple solar-position questions.
package geo

import "math"

// StandardWidth is the width of the reference map all ratios are taken
// against. The reference map is StandardWidth x StandardWidth/2.
const StandardWidth = 3600.0

// Clamp pins a coordinate into latitude [-90, 90] and longitude
// [-180, 180]. Every projection helper clamps its input first, so out of
// range values land on the nearest raster edge.
func Clamp(lat, lon float64) (float64, float64) {
	return clamp(lat, -90, 90), clamp(lon, -180, 180)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Project maps (lat, lon) onto a width x height equirectangular raster.
// Longitude 0 lands on mid width and latitude +90 on y=0.
func Project(lat, lon, width, height float64) (x, y float64) {
	lat, lon = Clamp(lat, lon)
	x = (lon + 180) / 360 * width
	y = (90 - lat) / 180 * height
	return x, y
}

// ProjectInt is Project truncated to pixel indices.
func ProjectInt(lat, lon float64, width, height int) (x, y int) {
	fx, fy := Project(lat, lon, float64(width), float64(height))
	return int(fx), int(fy)
}

// Unproject is the inverse of Project.
func Unproject(x, y, width, height float64) (lat, lon float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	x = clamp(x, 0, width)
	y = clamp(y, 0, height)
	lon = x/width*360 - 180
	lat = 90 - y/height*180
	return lat, lon
}

// HorizontalPixelDistance is the pixel span between two longitudes along
// the given latitude. On an equirectangular raster the span does not depend
// on latitude; lat is only clamped. The result is within [0, width].
func HorizontalPixelDistance(lon1, lon2, lat, width, height float64) float64 {
	x1, _ := Project(lat, lon1, width, height)
	x2, _ := Project(lat, lon2, width, height)
	return clamp(math.Abs(x2-x1), 0, math.Max(width, 0))
}

// VerticalPixelDistance is the pixel span between two latitudes along the
// given longitude, within [0, height].
func VerticalPixelDistance(lat1, lat2, lon, width, height float64) float64 {
	_, y1 := Project(lat1, lon, width, height)
	_, y2 := Project(lat2, lon, width, height)
	return clamp(math.Abs(y2-y1), 0, math.Max(height, 0))
}

// MapRatio is the ratio between a raster of the given width and the
// standard map.
func MapRatio(width float64) float64 {
	return width / StandardWidth
}
