// Package stencil draws geographic overlays onto equirectangular rasters.
// Every stage takes a raster and returns a new one; inputs are never
// modified.
package stencil

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var ErrBadDimensions = errors.New("raster must be non-empty with a 2:1 aspect ratio")

// NewRaster allocates a transparent width x height raster.
func NewRaster(width, height int) (*image.RGBA, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// CheckDimensions reports whether img can be used as an equirectangular
// raster.
func CheckDimensions(img image.Image) error {
	if img == nil {
		return ErrBadDimensions
	}
	b := img.Bounds()
	return checkSize(b.Dx(), b.Dy())
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width != 2*height {
		return fmt.Errorf("%w: got %dx%d", ErrBadDimensions, width, height)
	}
	return nil
}

// Clone returns a deep copy of img rebased to the origin.
func Clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Category is the kind of base map under the overlays.
type Category int

const (
	CategoryStandard Category = iota
	CategorySatellite
)

func (c Category) String() string {
	if c == CategorySatellite {
		return "satellite"
	}
	return "standard"
}

func ParseCategory(s string) (Category, error) {
	switch s {
	case "standard", "":
		return CategoryStandard, nil
	case "satellite":
		return CategorySatellite, nil
	}
	return CategoryStandard, fmt.Errorf("unknown map category %q", s)
}
