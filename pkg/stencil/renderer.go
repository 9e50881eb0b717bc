package stencil

import (
	"image"
	"image/color"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

// HourMode selects extra longitude lines drawn by the grid stage.
type HourMode int

const (
	HourNone HourMode = iota
	HourWallClock
)

// Options are the user settings a Renderer draws with. They are plain
// values captured when the Renderer is built.
type Options struct {
	ScreenScale    float64
	Category       Category
	HourMode       HourMode
	GridColor      color.Color
	MinorGridColor color.Color
	// LineThickness overrides the default grid thickness when positive.
	LineThickness   float64
	Recency         time.Duration
	MagnitudeColors map[feed.MagnitudeRange]color.Color
	Now             func() time.Time
	Plotter         *Plotter
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		ScreenScale:     1,
		Category:        CategoryStandard,
		HourMode:        HourNone,
		GridColor:       Red,
		MinorGridColor:  Teal,
		Recency:         feed.RecentDay.Window(),
		MagnitudeColors: DefaultMagnitudeColors,
		Now:             time.Now,
	}
}

// Features is everything a pipeline run may draw.
type Features struct {
	Events  []feed.Event
	Cities  []feed.City
	Regions []feed.Region
	Sites   []feed.Site
}

func (f Features) Empty() bool {
	return len(f.Events) == 0 && len(f.Cities) == 0 && len(f.Regions) == 0 && len(f.Sites) == 0
}

// Renderer holds one stage function per overlay kind. Stage functions read
// only their arguments and the Renderer's options.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) (*Renderer, error) {
	def := DefaultOptions()
	if opts.ScreenScale <= 0 {
		opts.ScreenScale = def.ScreenScale
	}
	if opts.GridColor == nil {
		opts.GridColor = def.GridColor
	}
	if opts.MinorGridColor == nil {
		opts.MinorGridColor = def.MinorGridColor
	}
	if opts.Recency <= 0 {
		opts.Recency = def.Recency
	}
	if opts.MagnitudeColors == nil {
		opts.MagnitudeColors = def.MagnitudeColors
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.Plotter == nil {
		p, err := NewPlotter(DefaultFont)
		if err != nil {
			return nil, err
		}
		opts.Plotter = p
	}
	return &Renderer{opts: opts}, nil
}

func (r *Renderer) Options() Options {
	return r.opts
}

// Apply runs a single stage.
func (r *Renderer) Apply(stage Stage, img image.Image, f Features) *image.RGBA {
	switch stage {
	case StageRegions:
		return r.Regions(img, f.Regions)
	case StageGridLines:
		return r.GridLines(img)
	case StageSites:
		return r.Sites(img, f.Sites)
	case StageCityNames:
		return r.CityNames(img, f.Cities)
	case StageMagnitudes:
		return r.Magnitudes(img, f.Events)
	}
	return Clone(img)
}

func size(img image.Image) (w, h float64) {
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}
