package stencil

import "math"

// GlyphKind selects the sizing table for a label.
type GlyphKind int

const (
	GlyphCity GlyphKind = iota
	GlyphMagnitude
)

const (
	cityBaseRetina = 32.0
	cityBase       = 16.0
	magnitudeBase  = 24.0
	smallMapWidth  = 3600.0

	CityLatitudeBonus      = 12.0
	MagnitudeLatitudeBonus = 10.0
	CityTextOffset         = 10
	TextStrokeWidth        = 2.0
)

// FontSize is the shared sizing rule for every label:
// base * screenScale * ratio * multiplier + |lat|/90 * latitudeBonus.
func FontSize(base, screenScale, ratio, multiplier, lat, latitudeBonus float64) float64 {
	return base*screenScale*ratio*multiplier + math.Abs(lat)/90*latitudeBonus
}

// BaseFontSize returns the unscaled size for a glyph kind.
func BaseFontSize(kind GlyphKind, screenScale float64) float64 {
	if kind == GlyphMagnitude {
		return magnitudeBase
	}
	if screenScale >= 2 {
		return cityBaseRetina
	}
	return cityBase
}

// CategoryMultiplier enlarges labels on small rasters and shrinks city
// labels on satellite imagery, which is already dense with detail.
func CategoryMultiplier(kind GlyphKind, category Category, width float64) float64 {
	m := 1.0
	if width/2 < smallMapWidth {
		m = 2.0
	}
	if category == CategorySatellite {
		if kind == GlyphCity {
			return 0.8
		}
		return 1.0
	}
	return m
}
