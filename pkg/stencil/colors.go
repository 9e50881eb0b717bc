package stencil

import (
	"image/color"

	"github.com/biter777/countries"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

var (
	Black  = color.RGBA{0, 0, 0, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Yellow = color.RGBA{255, 204, 0, 255}
	Teal   = color.RGBA{90, 200, 250, 255}
	White  = color.RGBA{255, 255, 255, 255}
)

// DefaultMagnitudeColors colors magnitude glyphs by band.
var DefaultMagnitudeColors = map[feed.MagnitudeRange]color.Color{
	feed.Mag4: color.RGBA{255, 235, 59, 255},
	feed.Mag5: color.RGBA{255, 193, 7, 255},
	feed.Mag6: color.RGBA{255, 152, 0, 255},
	feed.Mag7: color.RGBA{255, 87, 34, 255},
	feed.Mag8: color.RGBA{233, 30, 99, 255},
	feed.Mag9: color.RGBA{156, 39, 176, 255},
}

var continentColors = map[countries.RegionCode]color.Color{
	countries.RegionAF: color.RGBA{255, 149, 0, 255},
	countries.RegionAS: color.RGBA{255, 59, 48, 255},
	countries.RegionEU: color.RGBA{0, 122, 255, 255},
	countries.RegionNA: color.RGBA{52, 199, 89, 255},
	countries.RegionSA: color.RGBA{175, 82, 222, 255},
	countries.RegionOC: color.RGBA{90, 200, 250, 255},
	countries.RegionAN: color.RGBA{229, 229, 234, 255},
}

// CityColor returns the city's own color, or one chosen by the continent of
// its country.
func CityColor(c feed.City) color.Color {
	if c.Color != nil {
		return c.Color
	}
	if c.Country != "" {
		if col, ok := continentColors[countries.ByName(c.Country).Region()]; ok {
			return col
		}
	}
	return White
}

func magnitudeColor(palette map[feed.MagnitudeRange]color.Color, mag float64) color.Color {
	if col, ok := palette[feed.RangeFor(mag)]; ok {
		return col
	}
	return Yellow
}

func siteColor(c feed.SiteCategory) color.Color {
	switch c {
	case feed.SiteNatural:
		return color.RGBA{52, 199, 89, 255}
	case feed.SiteMixed:
		return color.RGBA{175, 82, 222, 255}
	case feed.SiteCultural:
		return color.RGBA{255, 59, 48, 255}
	}
	return White
}

func withAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(a * 255)
	return n
}
