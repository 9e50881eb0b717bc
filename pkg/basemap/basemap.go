// Package basemap rasterizes land polygons into the base image the overlay
// pipeline composites onto.
package basemap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	geojson "github.com/paulmach/go.geojson"

	"github.com/sudorandom/quake-stencil/pkg/geo"
	"github.com/sudorandom/quake-stencil/pkg/stencil"
)

type Palette struct {
	Ocean   color.RGBA
	Land    color.RGBA
	Outline color.RGBA
}

var (
	// DarkPalette matches the standard map style.
	DarkPalette = Palette{
		Ocean:   color.RGBA{8, 10, 15, 255},
		Land:    color.RGBA{26, 29, 35, 255},
		Outline: color.RGBA{36, 42, 53, 255},
	}
	SatellitePalette = Palette{
		Ocean:   color.RGBA{6, 22, 48, 255},
		Land:    color.RGBA{46, 70, 38, 255},
		Outline: color.RGBA{80, 96, 70, 255},
	}
)

// PaletteFor picks the palette for a base-map category.
func PaletteFor(c stencil.Category) Palette {
	if c == stencil.CategorySatellite {
		return SatellitePalette
	}
	return DarkPalette
}

type painter struct {
	img           *image.RGBA
	width, height int
}

// Render draws every polygon and multipolygon of the feature collection onto
// an ocean filled raster of the given size.
func Render(data []byte, width, height int, p Palette) (*image.RGBA, error) {
	img, err := stencil.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{p.Ocean}, image.Point{}, draw.Src)
	if len(data) == 0 {
		return img, nil
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding land polygons: %w", err)
	}
	pt := &painter{img: img, width: width, height: height}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		switch {
		case f.Geometry.IsPolygon():
			pt.polygon(f.Geometry.Polygon, p)
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				pt.polygon(poly, p)
			}
		}
	}
	return img, nil
}

func (pt *painter) polygon(rings [][][]float64, p Palette) {
	pt.fill(rings, p.Land)
	for _, ring := range rings {
		pt.ring(ring, p.Outline)
	}
}

func (pt *painter) project(c []float64) (x, y float64) {
	return geo.Project(c[1], c[0], float64(pt.width), float64(pt.height))
}

// fill is an even-odd scanline fill across all rings, so holes stay open.
func (pt *painter) fill(rings [][][]float64, c color.RGBA) {
	if len(rings) == 0 {
		return
	}
	type point struct{ x, y float64 }
	projected := make([][]point, 0, len(rings))
	minY, maxY := float64(pt.height), 0.0
	for _, ring := range rings {
		pts := make([]point, 0, len(ring))
		for _, coord := range ring {
			if len(coord) < 2 {
				continue
			}
			x, y := pt.project(coord)
			pts = append(pts, point{x, y})
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
		projected = append(projected, pts)
	}
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= pt.height {
			continue
		}
		fy := float64(y) + 0.5
		var nodes []int
		for _, ring := range projected {
			for i := range ring {
				j := (i + 1) % len(ring)
				a, b := ring[i], ring[j]
				if (a.y < fy && b.y >= fy) || (b.y < fy && a.y >= fy) {
					nodes = append(nodes, int(math.Round(a.x+(fy-a.y)/(b.y-a.y)*(b.x-a.x))))
				}
			}
		}
		sort.Ints(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			xs, xe := max(nodes[i], 0), min(nodes[i+1], pt.width)
			for x := xs; x < xe; x++ {
				pt.set(x, y, c)
			}
		}
	}
}

func (pt *painter) ring(coords [][]float64, c color.RGBA) {
	for i := 0; i+1 < len(coords); i++ {
		if len(coords[i]) < 2 || len(coords[i+1]) < 2 {
			continue
		}
		x1, y1 := pt.project(coords[i])
		x2, y2 := pt.project(coords[i+1])
		pt.line(int(x1), int(y1), int(x2), int(y2), c)
	}
}

// line is Bresenham over the raw pixel buffer.
func (pt *painter) line(x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		pt.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (pt *painter) set(x, y int, c color.RGBA) {
	if x < 0 || x >= pt.width || y < 0 || y >= pt.height {
		return
	}
	off := y*pt.img.Stride + x*4
	pt.img.Pix[off], pt.img.Pix[off+1], pt.img.Pix[off+2], pt.img.Pix[off+3] = c.R, c.G, c.B, 255
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
