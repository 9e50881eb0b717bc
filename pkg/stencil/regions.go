package stencil

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/geo"
)

const regionAlpha = 0.5

type rect struct {
	x, y, w, h float64
}

func regionRect(ul, lr feed.Point, width, height float64) rect {
	x, y := geo.Project(ul.Lat, ul.Lon, width, height)
	return rect{
		x: x,
		y: y,
		w: geo.HorizontalPixelDistance(ul.Lon, lr.Lon, ul.Lat, width, height),
		h: geo.VerticalPixelDistance(ul.Lat, lr.Lat, ul.Lon, width, height),
	}
}

// regionRects projects a region to one rectangle, or two when it crosses
// the antimeridian (upper left east of lower right).
func regionRects(reg feed.Region, width, height float64) []rect {
	ul, lr := reg.UpperLeft, reg.LowerRight
	if ul.Lon <= lr.Lon {
		return []rect{regionRect(ul, lr, width, height)}
	}
	return []rect{
		regionRect(ul, feed.Point{Lat: lr.Lat, Lon: 180}, width, height),
		regionRect(feed.Point{Lat: ul.Lat, Lon: -180}, lr, width, height),
	}
}

// Regions shades each region with a half transparent rectangle. Fallback
// regions are skipped.
func (r *Renderer) Regions(img image.Image, regions []feed.Region) *image.RGBA {
	drawn := 0
	for _, reg := range regions {
		if !reg.Fallback {
			drawn++
		}
	}
	if drawn == 0 {
		return Clone(img)
	}

	ctx := gg.NewContextForImage(img)
	defer func() { _ = ctx.Close() }()
	w, h := size(img)

	for _, reg := range regions {
		if reg.Fallback {
			continue
		}
		col := reg.Color
		if col == nil {
			col = Yellow
		}
		ctx.SetColor(withAlpha(col, regionAlpha))
		for _, rc := range regionRects(reg, w, h) {
			ctx.DrawRectangle(rc.x, rc.y, rc.w, rc.h)
		}
		_ = ctx.Fill()
	}
	return toRGBA(ctx.Image())
}

// Site marker geometry on the standard map, in pixels.
const (
	siteHalfWidth = 6.0
	siteHeight    = 12.0
)

// Sites draws a small downward pointing triangle at each site, colored by
// category.
func (r *Renderer) Sites(img image.Image, sites []feed.Site) *image.RGBA {
	if len(sites) == 0 {
		return Clone(img)
	}
	ctx := gg.NewContextForImage(img)
	defer func() { _ = ctx.Close() }()
	w, h := size(img)

	k := geo.MapRatio(w) * r.opts.ScreenScale
	if k < 0.5 {
		k = 0.5
	}
	for _, s := range sites {
		x, y := geo.Project(s.Lat, s.Lon, w, h)
		ctx.MoveTo(x, y)
		ctx.LineTo(x-siteHalfWidth*k, y-siteHeight*k)
		ctx.LineTo(x+siteHalfWidth*k, y-siteHeight*k)
		ctx.ClosePath()
		ctx.SetColor(siteColor(s.Category))
		_ = ctx.FillPreserve()
		ctx.SetColor(Black)
		ctx.SetStroke(gg.DefaultStroke())
		_ = ctx.Stroke()
	}
	return toRGBA(ctx.Image())
}
