package stencil

import (
	"image"
	"math"
	"sort"
	"strconv"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/geo"
)

func (r *Renderer) cityRecords(width, height int, cities []feed.City) []TextRecord {
	w := float64(width)
	scale := r.opts.ScreenScale
	base := BaseFontSize(GlyphCity, scale)
	mult := CategoryMultiplier(GlyphCity, r.opts.Category, w)
	ratio := geo.MapRatio(w)

	records := make([]TextRecord, 0, len(cities))
	for _, c := range cities {
		x, y := geo.ProjectInt(c.Lat, c.Lon, width, height)
		records = append(records, TextRecord{
			Text:    c.Label,
			X:       float64(x + CityTextOffset),
			Y:       float64(y),
			Size:    FontSize(base, scale, ratio, mult, c.Lat, CityLatitudeBonus),
			Fill:    CityColor(c),
			Outline: Black,
		})
	}
	return records
}

// CityNames labels every city just right of its projected location.
func (r *Renderer) CityNames(img image.Image, cities []feed.City) *image.RGBA {
	if len(cities) == 0 {
		return Clone(img)
	}
	b := img.Bounds()
	return r.opts.Plotter.Draw(img, r.cityRecords(b.Dx(), b.Dy(), cities))
}

// SortByMagnitude returns a copy of events ordered from the smallest to
// the largest display magnitude. Ties keep their input order.
func SortByMagnitude(events []feed.Event) []feed.Event {
	sorted := append([]feed.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayMagnitude() < sorted[j].DisplayMagnitude()
	})
	return sorted
}

// MagnitudeText formats a magnitude rounded to three places.
func MagnitudeText(m float64) string {
	return strconv.FormatFloat(math.Round(m*1000)/1000, 'f', -1, 64)
}

func (r *Renderer) magnitudeRecords(width, height int, events []feed.Event) []TextRecord {
	w := float64(width)
	scale := r.opts.ScreenScale
	mult := CategoryMultiplier(GlyphMagnitude, r.opts.Category, w)
	ratio := geo.MapRatio(w)
	now := r.opts.Now()

	sorted := SortByMagnitude(events)
	records := make([]TextRecord, 0, len(sorted))
	for _, e := range sorted {
		x, y := geo.ProjectInt(e.Lat, e.Lon, width, height)
		mag := e.DisplayMagnitude()
		outline := Black
		if feed.IsRecent(e, r.opts.Recency, now) {
			outline = Red
		}
		records = append(records, TextRecord{
			Text:    MagnitudeText(mag),
			X:       float64(x),
			Y:       float64(y),
			Size:    FontSize(magnitudeBase, scale, ratio, mult, e.Lat, MagnitudeLatitudeBonus) + mag,
			Fill:    magnitudeColor(r.opts.MagnitudeColors, mag),
			Outline: outline,
		})
	}
	return records
}

// Magnitudes draws each event's magnitude at its location, smallest first
// so the largest events end up on top. Recent events get a red outline.
func (r *Renderer) Magnitudes(img image.Image, events []feed.Event) *image.RGBA {
	if len(events) == 0 {
		return Clone(img)
	}
	b := img.Bounds()
	return r.opts.Plotter.Draw(img, r.magnitudeRecords(b.Dx(), b.Dy(), events))
}
