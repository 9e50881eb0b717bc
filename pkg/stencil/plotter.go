package stencil

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts are the families a Plotter can be built from.
var Fonts = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
	"mono":    gomono.TTF,
}

const DefaultFont = "bold"

// FontNames lists the available families in sorted order.
func FontNames() []string {
	names := make([]string, 0, len(Fonts))
	for name := range Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextRecord is one positioned label. X is the leading edge and Y the
// vertical center of the text. A nil Outline draws the fill only.
type TextRecord struct {
	Text    string
	X, Y    float64
	Size    float64
	Fill    color.Color
	Outline color.Color
}

// Plotter draws text records onto rasters with a single font family.
type Plotter struct {
	name        string
	source      *text.FontSource
	strokeWidth float64
}

func NewPlotter(family string) (*Plotter, error) {
	if family == "" {
		family = DefaultFont
	}
	data, ok := Fonts[family]
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", family)
	}
	source, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", family, err)
	}
	return &Plotter{name: family, source: source, strokeWidth: TextStrokeWidth}, nil
}

func (p *Plotter) Name() string {
	return p.name
}

func (p *Plotter) face(size float64) text.Face {
	if size < 1 {
		size = 1
	}
	return p.source.Face(size)
}

// Measure returns the rendered width and height of s at size.
func (p *Plotter) Measure(s string, size float64) (w, h float64) {
	return text.Measure(s, p.face(size))
}

// Place returns where a record is drawn on a raster of the given width.
// Text running past the right edge moves left by its own width so it never
// wraps across the antimeridian.
func (p *Plotter) Place(r TextRecord, width float64) (x, y float64) {
	w, _ := p.Measure(r.Text, r.Size)
	x = r.X
	if x+w > width {
		x -= w
	}
	return x, r.Y
}

var outlineOffsets = [8][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Draw paints records onto a copy of img in input order, so later records
// cover earlier ones.
func (p *Plotter) Draw(img image.Image, records []TextRecord) *image.RGBA {
	if len(records) == 0 {
		return Clone(img)
	}
	ctx := gg.NewContextForImage(img)
	defer func() { _ = ctx.Close() }()

	width := float64(ctx.Width())
	faces := make(map[float64]text.Face)
	for _, r := range records {
		if r.Text == "" {
			continue
		}
		face, ok := faces[r.Size]
		if !ok {
			face = p.face(r.Size)
			faces[r.Size] = face
		}
		ctx.SetFont(face)
		x, y := p.Place(r, width)

		if r.Outline != nil {
			ctx.SetColor(r.Outline)
			for _, o := range outlineOffsets {
				ctx.DrawStringAnchored(r.Text, x+o[0]*p.strokeWidth, y+o[1]*p.strokeWidth, 0, 0.5)
			}
		}
		fill := r.Fill
		if fill == nil {
			fill = color.White
		}
		ctx.SetColor(fill)
		ctx.DrawStringAnchored(r.Text, x, y, 0, 0.5)
	}
	return toRGBA(ctx.Image())
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	return Clone(img)
}
