package stencil

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/sudorandom/quake-stencil/pkg/geo"
)

// Reference parallels, in degrees.
var GridLatitudes = []float64{
	0,        // equator
	23.4366,  // tropic of cancer
	-23.4366, // tropic of capricorn
	66.5634,  // arctic circle
	-66.5634, // antarctic circle
}

// Reference meridians, in degrees.
var GridLongitudes = []float64{0, 180}

const (
	defaultLineThickness = 4.0
	edgeMargin           = 4
	hourLineSpacing      = 15.0
	hourLineOffset       = 7.5
)

type gridLine struct {
	horizontal bool
	at         int
	thickness  float64
	color      color.Color
	dashed     bool
}

// lineThickness is the solid line width. Satellite maps get half of it.
func (r *Renderer) lineThickness() float64 {
	t := defaultLineThickness
	if r.opts.LineThickness > 0 {
		t = r.opts.LineThickness
	}
	if r.opts.Category == CategorySatellite {
		t /= 2
	}
	return t
}

// gridLines lays out every line the grid stage draws on a width x height
// raster. Lines that would touch the far edge move back by edgeMargin.
func (r *Renderer) gridLines(width, height int) []gridLine {
	thickness := r.lineThickness()
	var lines []gridLine

	if r.opts.HourMode == HourWallClock {
		for lon := 0.0; lon < 360; lon += hourLineSpacing {
			x := int(float64(width) * ((lon + hourLineOffset) / 360))
			lines = append(lines, gridLine{
				at:        pullBack(x, width),
				thickness: thickness / 2,
				color:     r.opts.MinorGridColor,
				dashed:    true,
			})
		}
	}

	for _, lat := range GridLatitudes {
		_, y := geo.ProjectInt(lat, 0, width, height)
		lines = append(lines, gridLine{
			horizontal: true,
			at:         pullBack(y, height),
			thickness:  thickness,
			color:      r.opts.GridColor,
		})
	}
	for _, lon := range GridLongitudes {
		x, _ := geo.ProjectInt(0, lon, width, height)
		lines = append(lines, gridLine{
			at:        pullBack(x, width),
			thickness: thickness,
			color:     r.opts.GridColor,
		})
	}
	return lines
}

func pullBack(at, limit int) int {
	if at+edgeMargin > limit {
		return at - edgeMargin
	}
	return at
}

// GridLines draws the reference parallels and meridians, plus dashed hour
// lines in wall clock mode.
func (r *Renderer) GridLines(img image.Image) *image.RGBA {
	b := img.Bounds()
	lines := r.gridLines(b.Dx(), b.Dy())

	ctx := gg.NewContextForImage(img)
	defer func() { _ = ctx.Close() }()
	w, h := size(img)

	for _, l := range lines {
		ctx.SetColor(l.color)
		stroke := gg.DefaultStroke().WithWidth(l.thickness)
		if l.dashed {
			stroke = stroke.WithCap(gg.LineCapRound).WithDashPattern(8, 8)
		}
		ctx.SetStroke(stroke)
		at := float64(l.at)
		if l.horizontal {
			ctx.DrawLine(0, at, w, at)
		} else {
			ctx.DrawLine(at, 0, at, h)
		}
		_ = ctx.Stroke()
	}
	return toRGBA(ctx.Image())
}
