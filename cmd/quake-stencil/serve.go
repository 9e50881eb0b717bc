package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/texhub"
)

type ServeCmd struct {
	MapFlags

	Addr      string        `help:"Listen address." default:":8080" env:"QUAKE_ADDR"`
	Feed      string        `help:"USGS GeoJSON feed URL." default:"${feed_url}"`
	Refresh   time.Duration `help:"Feed poll interval." default:"5m"`
	Indicator time.Duration `help:"Indicator lifecycle tick." default:"1s"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(g)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := texhub.NewHub()
	defer hub.Close()
	e, err := newEngine(g, db, c.MapFlags, hub)
	if err != nil {
		return err
	}
	if last := e.Last(); last != nil {
		if err := hub.Publish(texhub.KindFinal, e.Category().String(), "", last); err != nil {
			log.Printf("[HUB] publishing cached raster: %v", err)
		}
	}

	e.StartFeedLoop(ctx, c.Refresh, func(context.Context) ([]feed.Event, error) {
		return loadEvents(c.Feed)
	})
	e.StartIndicatorLoop(ctx, c.Indicator)

	gin.SetMode(gin.ReleaseMode)
	router := hub.Router(func() gin.H {
		state, stage := e.PipelineState()
		return gin.H{
			"events":     len(e.Events()),
			"indicators": e.Indicators().Len(),
			"pipeline":   state.String(),
			"stage":      stage.String(),
			"last":       e.LastResult().String(),
		}
	})
	srv := &http.Server{Addr: c.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HUB] shutdown: %v", err)
		}
	}()

	log.Printf("[HUB] listening on %s", c.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
