package main

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/sudorandom/quake-stencil/pkg/basemap"
	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/quakeengine"
	"github.com/sudorandom/quake-stencil/pkg/sources"
	"github.com/sudorandom/quake-stencil/pkg/store"
	"github.com/sudorandom/quake-stencil/pkg/utils"
	"github.com/sudorandom/quake-stencil/pkg/viewer"
)

var (
	headlessFlag = flag.Bool("headless", false, "Run without a local window (Xvfb rendering active)")
	renderWidth  = flag.Int("width", 1920, "Internal rendering width")
	mapWidth     = flag.Int("map-width", 3600, "Width of the composited map texture")
	windowWidth  = flag.Int("window-width", 1280, "Initial window width (non-headless only)")
	tpsFlag      = flag.Int("tps", 30, "Ticks per second (engine updates)")
	storeDir     = flag.String("store", "", "Badger directory for cached rasters and settings")
	feedURL      = flag.String("feed", sources.USGSFeedURL(sources.FeedM25, feed.RecentDay), "USGS GeoJSON feed")
	refreshFlag  = flag.Duration("refresh", 5*time.Minute, "Feed poll interval")
	captureDir   = flag.String("capture-dir", "captures", "Where F12 screenshots are written")
	minPop       = flag.Int("min-population", 1000000, "Smallest city to label")
)

func openStore() (*store.DB, error) {
	if *storeDir == "" {
		return store.OpenInMemory()
	}
	return store.Open(*storeDir)
}

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	db, err := openStore()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	engine, err := quakeengine.New(quakeengine.Config{KV: db})
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	land, err := utils.Fetch(sources.LandGeoJSONURL, true, "[LAND]")
	if err != nil {
		log.Fatalf("Failed to load land polygons: %v", err)
	}
	base, err := basemap.Render(land, *mapWidth, *mapWidth/2, basemap.PaletteFor(engine.Category()))
	if err != nil {
		log.Fatalf("Failed to render base map: %v", err)
	}
	if err := engine.SetBase(base); err != nil {
		log.Fatalf("Failed to set base map: %v", err)
	}
	if cities, err := sources.FetchCities(sources.WorldCitiesURL, *minPop); err != nil {
		log.Printf("[CITIES] skipping city labels: %v", err)
	} else {
		engine.SetCities(cities)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.StartFeedLoop(ctx, *refreshFlag, func(context.Context) ([]feed.Event, error) {
		data, err := utils.Fetch(*feedURL, false, "[USGS]")
		if err != nil {
			return nil, err
		}
		return feed.ParseUSGS(bytes.NewReader(data))
	})

	v := viewer.New(engine, *renderWidth, *renderWidth/2)
	v.CaptureDir = *captureDir

	ebiten.SetTPS(*tpsFlag)
	if *headlessFlag {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(*windowWidth, *windowWidth/2)
		ebiten.SetWindowTitle("Earthquake Map Viewer")
	}
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
