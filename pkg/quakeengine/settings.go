package quakeengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/indicator"
	"github.com/sudorandom/quake-stencil/pkg/stencil"
	"github.com/sudorandom/quake-stencil/pkg/store"
)

// Settings are the user preferences persisted between runs.
type Settings struct {
	Stages        []string `json:"stages"`
	Recency       string   `json:"recency"`
	Highlight     string   `json:"highlight"`
	Category      string   `json:"category"`
	HourMode      string   `json:"hour_mode"`
	Font          string   `json:"font"`
	GridColor     string   `json:"grid_color,omitempty"`
	LineThickness float64  `json:"line_thickness,omitempty"`
	ScreenScale   float64  `json:"screen_scale"`
	MinMagnitude  float64  `json:"min_magnitude"`
	ExcludePlaces []string `json:"exclude_places,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Stages:      []string{"regions", "gridlines", "sites", "citynames", "magnitudes"},
		Recency:     feed.RecentDay.String(),
		Highlight:   indicator.StyleAnimatedRing.String(),
		Category:    stencil.CategoryStandard.String(),
		HourMode:    "none",
		Font:        stencil.DefaultFont,
		ScreenScale: 1,
	}
}

func settingsKey(name string) string {
	return "settings/" + name
}

// LoadSettings returns the stored settings, or the defaults when none are
// stored yet. Stored fields override defaults one by one.
func LoadSettings(kv store.KV, name string) (Settings, error) {
	s := DefaultSettings()
	data, err := kv.Get(settingsKey(name))
	if err != nil {
		return s, fmt.Errorf("loading settings %q: %w", name, err)
	}
	if data == nil {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("decoding settings %q: %w", name, err)
	}
	return s, nil
}

func SaveSettings(kv store.KV, name string, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return kv.Put(settingsKey(name), data)
}

// resolved is Settings parsed into the types the pipeline works with.
type resolved struct {
	stages   []stencil.Stage
	recency  feed.Recency
	style    indicator.Style
	category stencil.Category
	hourMode stencil.HourMode
	grid     color.Color
}

func (r resolved) window() time.Duration {
	return r.recency.Window()
}

func (s Settings) resolve() (resolved, error) {
	var r resolved
	var err error
	if r.stages, err = stencil.ParseStages(strings.Join(s.Stages, ",")); err != nil {
		return r, err
	}
	if r.recency, err = feed.ParseRecency(s.Recency); err != nil {
		return r, err
	}
	if r.style, err = indicator.ParseStyle(s.Highlight); err != nil {
		return r, err
	}
	if r.category, err = stencil.ParseCategory(s.Category); err != nil {
		return r, err
	}
	switch strings.ToLower(s.HourMode) {
	case "", "none":
		r.hourMode = stencil.HourNone
	case "wall-clock", "wallclock":
		r.hourMode = stencil.HourWallClock
	default:
		return r, fmt.Errorf("unknown hour mode %q", s.HourMode)
	}
	if s.GridColor != "" {
		if r.grid, err = ParseHexColor(s.GridColor); err != nil {
			return r, err
		}
	}
	return r, nil
}

// ParseHexColor accepts #rgb and #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = errors.New("bad length")
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
