// Package quakeengine wires the feed, the overlay pipeline and the indicator
// lifecycle into one running application.
package quakeengine

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/indicator"
	"github.com/sudorandom/quake-stencil/pkg/nodetable"
	"github.com/sudorandom/quake-stencil/pkg/pipeline"
	"github.com/sudorandom/quake-stencil/pkg/stencil"
	"github.com/sudorandom/quake-stencil/pkg/store"
	"github.com/sudorandom/quake-stencil/pkg/texhub"
)

// Publisher receives every intermediate and final raster. *texhub.Hub
// satisfies it.
type Publisher interface {
	Publish(kind texhub.Kind, category, stage string, img image.Image) error
}

type Config struct {
	KV           store.KV
	SettingsName string
	Publisher    Publisher
	Now          func() time.Time
	// IndicatorOptions are passed through to the indicator manager.
	IndicatorOptions []indicator.Option
}

type Engine struct {
	kv           store.KV
	settingsName string
	publisher    Publisher
	now          func() time.Time

	scheduler  *pipeline.Scheduler
	indicators *indicator.Manager
	table      *nodetable.Table

	mu         sync.Mutex
	settings   Settings
	cfg        resolved
	renderer   *stencil.Renderer
	filter     *feed.Filter
	base       *image.RGBA
	previous   []feed.Event
	cities     []feed.City
	cityIndex  *feed.CityIndex
	regions    []feed.Region
	sites      []feed.Site
	lastResult feed.Result
}

// New loads the persisted settings and builds the engine around them.
func New(c Config) (*Engine, error) {
	if c.KV == nil {
		return nil, fmt.Errorf("quakeengine: a key/value store is required")
	}
	if c.SettingsName == "" {
		c.SettingsName = "default"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	opts := append([]indicator.Option{indicator.WithClock(c.Now)}, c.IndicatorOptions...)
	e := &Engine{
		kv:           c.KV,
		settingsName: c.SettingsName,
		publisher:    c.Publisher,
		now:          c.Now,
		scheduler:    pipeline.New(nil, pipeline.WithCache(pipeline.NewStoreCache(c.KV), "")),
		indicators:   indicator.NewManager(opts...),
		table:        nodetable.New(),
	}
	s, err := LoadSettings(c.KV, c.SettingsName)
	if err != nil {
		log.Printf("[ENGINE] %v, using defaults", err)
	}
	if err := e.apply(s); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) apply(s Settings) error {
	cfg, err := s.resolve()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	plotter, err := stencil.NewPlotter(s.Font)
	if err != nil {
		return err
	}
	r, err := stencil.NewRenderer(stencil.Options{
		ScreenScale:   s.ScreenScale,
		Category:      cfg.category,
		HourMode:      cfg.hourMode,
		GridColor:     cfg.grid,
		LineThickness: s.LineThickness,
		Recency:       cfg.window(),
		Now:           e.now,
		Plotter:       plotter,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.renderer == nil || cfg.category != e.cfg.category {
		if ok, err := e.scheduler.Switch(cfg.category.String()); err != nil {
			log.Printf("[ENGINE] restoring cached %s raster: %v", cfg.category, err)
		} else if ok {
			log.Printf("[ENGINE] restored cached %s raster", cfg.category)
		}
	}
	e.renderer = r
	e.settings = s
	e.cfg = cfg
	e.filter = feed.NewFilter(s.MinMagnitude, 0, s.ExcludePlaces...)
	return nil
}

// UpdateSettings validates, persists and applies s. Nothing is redrawn until
// the next RenderAll.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := e.apply(s); err != nil {
		return err
	}
	return SaveSettings(e.kv, e.settingsName, s)
}

func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *Engine) Category() stencil.Category {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.category
}

// SetBase replaces the base raster the overlays are drawn on.
func (e *Engine) SetBase(img image.Image) error {
	if err := stencil.CheckDimensions(img); err != nil {
		return err
	}
	c := stencil.Clone(img)
	e.mu.Lock()
	e.base = c
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetCities(cities []feed.City) {
	idx := feed.NewCityIndex(cities)
	e.mu.Lock()
	e.cities, e.cityIndex = cities, idx
	e.mu.Unlock()
	e.table.RemoveClass(nodetable.ClassCity)
	e.table.AddCities(cities)
}

func (e *Engine) SetRegions(regions []feed.Region) {
	e.mu.Lock()
	e.regions = regions
	e.mu.Unlock()
	e.table.RemoveClass(nodetable.ClassRegion)
	e.table.AddRegions(regions)
}

func (e *Engine) SetSites(sites []feed.Site) {
	e.mu.Lock()
	e.sites = sites
	e.mu.Unlock()
	e.table.RemoveClass(nodetable.ClassSite)
	e.table.AddSites(sites)
}

// NewEventList takes a fresh feed snapshot. An identical snapshot changes
// nothing and returns a nil channel. Otherwise the snapshot replaces the
// previous one, the new events are announced, and a full re-plot is
// submitted; the returned channel closes when that run completes.
func (e *Engine) NewEventList(events []feed.Event) (feed.Result, <-chan struct{}) {
	now := e.now()
	e.mu.Lock()
	candidate := e.filter.Apply(events, now)
	res := feed.Reconcile(e.previous, candidate)
	e.lastResult = res
	if res.Identical {
		e.mu.Unlock()
		log.Printf("[FEED] snapshot of %d events unchanged", len(candidate))
		return res, nil
	}
	e.previous = candidate
	idx := e.cityIndex
	e.mu.Unlock()

	e.announce(res, idx)
	e.table.ReplaceEvents(candidate)
	if n := e.indicators.Prune(candidate); n > 0 {
		log.Printf("[FEED] pruned %d indicators for events that left the feed", n)
	}
	return res, e.RenderAll()
}

func (e *Engine) announce(res feed.Result, idx *feed.CityIndex) {
	log.Printf("[FEED] snapshot changed, %d new events", len(res.Delta))
	big, ok := res.Biggest()
	if !ok {
		return
	}
	near := ""
	if c, found := idx.Nearest(big.Lat, big.Lon); found {
		near = fmt.Sprintf(" near %s", c.Label)
	}
	log.Printf("[FEED] largest new event %s: M%.1f%s (%s)", big.Code, big.DisplayMagnitude(), near, big.Place)
}

// RenderAll submits a run of every enabled stage over the current base and
// features. It returns nil when there is no base raster yet. The run keeps
// the renderer and category current at submission, whatever settings
// change while it waits or runs.
func (e *Engine) RenderAll() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.base == nil {
		log.Printf("[ENGINE] no base raster, skipping render")
		return nil
	}
	category := e.cfg.category.String()
	onStage := func(img *image.RGBA, stage *stencil.Stage, elapsed *time.Duration) {
		if img == nil || stage == nil {
			return
		}
		log.Printf("[PIPELINE] %s done in %v", stage, *elapsed)
		e.publish(texhub.KindStage, category, stage.String(), img)
	}
	onComplete := func(total time.Duration, final *image.RGBA) {
		if final == nil {
			return
		}
		log.Printf("[PIPELINE] %s raster composited in %v", category, total)
		e.publish(texhub.KindFinal, category, "", final)
	}
	// Submitted under mu so a category Switch cannot slip between the
	// renderer capture and the sequence assignment.
	features := stencil.Features{
		Events:  e.previous,
		Cities:  e.cities,
		Regions: e.regions,
		Sites:   e.sites,
	}
	return e.scheduler.SubmitJob(pipeline.Job{
		Base:       e.base,
		Features:   features,
		Stages:     e.cfg.stages,
		Renderer:   e.renderer,
		OnStage:    onStage,
		OnComplete: onComplete,
	})
}

func (e *Engine) publish(kind texhub.Kind, category, stage string, img *image.RGBA) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(kind, category, stage, img); err != nil {
		log.Printf("[ENGINE] publish %s %s: %v", kind, category, err)
	}
}

// SyncIndicators runs one indicator lifecycle tick against the current
// snapshot and returns how many indicators were created.
func (e *Engine) SyncIndicators() int {
	e.mu.Lock()
	events := e.previous
	style := e.cfg.style
	window := e.cfg.window()
	e.mu.Unlock()
	return e.indicators.Sync(events, style, window)
}

// StartIndicatorLoop ticks the indicator lifecycle every interval until ctx
// is done. It never waits on a pipeline run.
func (e *Engine) StartIndicatorLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := e.SyncIndicators(); n > 0 {
					log.Printf("[INDICATOR] created %d indicators", n)
				}
			}
		}
	}()
}

// StartFeedLoop polls fetch every interval and hands each snapshot to
// NewEventList. The first poll happens immediately.
func (e *Engine) StartFeedLoop(ctx context.Context, interval time.Duration, fetch func(context.Context) ([]feed.Event, error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			events, err := fetch(ctx)
			if err != nil {
				log.Printf("[FEED] fetch failed: %v", err)
			} else {
				e.NewEventList(events)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (e *Engine) Events() []feed.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previous
}

func (e *Engine) LastResult() feed.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResult
}

// Last returns the most recently composited raster, if any.
func (e *Engine) Last() *image.RGBA {
	img, _ := e.scheduler.Last()
	return img
}

func (e *Engine) PipelineState() (pipeline.State, stencil.Stage) {
	return e.scheduler.State()
}

func (e *Engine) Indicators() *indicator.Manager {
	return e.indicators
}

func (e *Engine) Table() *nodetable.Table {
	return e.table
}
