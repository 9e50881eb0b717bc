package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

type RenderCmd struct {
	MapFlags

	Feed string `help:"USGS GeoJSON feed, path or URL." default:"${feed_url}"`
	Out  string `help:"Output file; .png or .tif/.tiff." short:"o" required:""`
}

func (c *RenderCmd) Run(g *Globals) error {
	db, err := openStore(g)
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := newEngine(g, db, c.MapFlags, nil)
	if err != nil {
		return err
	}
	events, err := loadEvents(c.Feed)
	if err != nil {
		return fmt.Errorf("loading feed: %w", err)
	}
	log.Printf("[FEED] %d events in feed", len(events))

	_, done := e.NewEventList(events)
	if done == nil {
		done = e.RenderAll()
	}
	if done != nil {
		<-done
	}
	img := e.Last()
	if img == nil {
		return fmt.Errorf("pipeline produced no raster")
	}
	return writeImage(c.Out, img)
}

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}
