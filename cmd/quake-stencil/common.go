package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"

	"github.com/sudorandom/quake-stencil/pkg/basemap"
	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/quakeengine"
	"github.com/sudorandom/quake-stencil/pkg/sources"
	"github.com/sudorandom/quake-stencil/pkg/stencil"
	"github.com/sudorandom/quake-stencil/pkg/store"
	"github.com/sudorandom/quake-stencil/pkg/utils"
)

// MapFlags are shared by every command that draws a map.
type MapFlags struct {
	Base          string   `help:"Base map image (PNG or JPEG, 2:1). Generated from --land when empty." type:"path"`
	Land          string   `help:"Land polygon GeoJSON, path or URL." default:"${land_url}"`
	Width         int      `help:"Width of the generated base map." default:"3600"`
	Cities        string   `help:"City CSV, path or URL. Empty disables city labels." default:"${cities_url}"`
	MinPopulation int      `help:"Smallest city to label." default:"1000000"`
	Sites         string   `help:"Sites CSV (name,lat,lon,category)." type:"path"`
	Stages        string   `help:"Comma separated stages to draw." default:"regions,gridlines,sites,citynames,magnitudes"`
	Category      string   `help:"Base map category." enum:"standard,satellite" default:"standard"`
	Recency       string   `help:"How long an event stays recent." enum:"12h,1d,2d,3d,7d,10d" default:"1d"`
	HourMode      string   `help:"Extra longitude lines." enum:"none,wall-clock" default:"none"`
	Font          string   `help:"Label font." enum:"regular,bold,mono" default:"bold"`
	Scale         float64  `help:"Screen scale for label sizes." default:"1"`
	MinMagnitude  float64  `help:"Drop events below this magnitude." default:"0"`
	Exclude       []string `help:"Drop events whose place contains any of these keywords."`
}

func openStore(g *Globals) (*store.DB, error) {
	if g.Store == "" {
		return store.OpenInMemory()
	}
	if err := os.MkdirAll(g.Store, 0o755); err != nil {
		return nil, err
	}
	return store.Open(g.Store)
}

// newEngine builds an engine with the map flags layered over the stored
// settings profile, and loads the base raster and reference features.
func newEngine(g *Globals, kv store.KV, m MapFlags, pub quakeengine.Publisher) (*quakeengine.Engine, error) {
	e, err := quakeengine.New(quakeengine.Config{KV: kv, SettingsName: g.Settings, Publisher: pub})
	if err != nil {
		return nil, err
	}
	s := e.Settings()
	s.Stages = strings.Split(m.Stages, ",")
	s.Category = m.Category
	s.Recency = m.Recency
	s.HourMode = m.HourMode
	s.Font = m.Font
	s.ScreenScale = m.Scale
	s.MinMagnitude = m.MinMagnitude
	s.ExcludePlaces = m.Exclude
	if err := e.UpdateSettings(s); err != nil {
		return nil, err
	}

	base, err := loadBase(m, e.Category())
	if err != nil {
		return nil, err
	}
	if err := e.SetBase(base); err != nil {
		return nil, fmt.Errorf("base map: %w", err)
	}

	if m.Cities != "" {
		data, err := utils.Fetch(m.Cities, true, "[CITIES]")
		if err != nil {
			return nil, fmt.Errorf("loading cities: %w", err)
		}
		cities, err := sources.ParseCities(bytes.NewReader(data), m.MinPopulation)
		if err != nil {
			return nil, err
		}
		log.Printf("[CITIES] %d cities with population >= %d", len(cities), m.MinPopulation)
		e.SetCities(cities)
	}
	if m.Sites != "" {
		f, err := os.Open(m.Sites)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sites, err := sources.ParseSites(f)
		if err != nil {
			return nil, err
		}
		e.SetSites(sites)
	}
	return e, nil
}

func loadBase(m MapFlags, category stencil.Category) (image.Image, error) {
	if m.Base != "" {
		f, err := os.Open(m.Base)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", m.Base, err)
		}
		return img, nil
	}
	data, err := utils.Fetch(m.Land, true, "[LAND]")
	if err != nil {
		return nil, fmt.Errorf("loading land polygons: %w", err)
	}
	return basemap.Render(data, m.Width, m.Width/2, basemap.PaletteFor(category))
}

func loadEvents(src string) ([]feed.Event, error) {
	data, err := utils.Fetch(src, false, "[USGS]")
	if err != nil {
		return nil, err
	}
	return feed.ParseUSGS(bytes.NewReader(data))
}
