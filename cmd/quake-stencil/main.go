package main

import (
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/sources"
)

type Globals struct {
	Store    string `help:"Badger directory for cached rasters and settings. Empty keeps everything in memory." env:"QUAKE_STORE"`
	Settings string `help:"Name of the settings profile." default:"default" env:"QUAKE_SETTINGS"`
	Debug    bool   `help:"Log with source locations."`
}

var cli struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Composite overlays onto a base map and write the result to a file."`
	Serve   ServeCmd   `cmd:"" help:"Poll the feed and serve live textures over HTTP and websocket."`
	Inspect InspectCmd `cmd:"" help:"Reconcile two feed snapshots and print what changed."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx := kong.Parse(&cli,
		kong.Name("quake-stencil"),
		kong.Description("Earthquake overlays composited onto a flat world map."),
		kong.UsageOnError(),
		kong.Vars{
			"land_url":   sources.LandGeoJSONURL,
			"cities_url": sources.WorldCitiesURL,
			"feed_url":   sources.USGSFeedURL(sources.FeedM25, feed.RecentDay),
		},
	)
	if cli.Debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
