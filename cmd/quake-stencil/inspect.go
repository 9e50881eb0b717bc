package main

import (
	"fmt"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

type InspectCmd struct {
	Previous string `arg:"" help:"Earlier feed snapshot, path or URL."`
	Current  string `arg:"" help:"Later feed snapshot, path or URL."`
	Recency  string `help:"Recency window used to flag events." enum:"12h,1d,2d,3d,7d,10d" default:"1d"`
}

func (c *InspectCmd) Run(g *Globals) error {
	previous, err := loadEvents(c.Previous)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Previous, err)
	}
	current, err := loadEvents(c.Current)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Current, err)
	}
	recency, err := feed.ParseRecency(c.Recency)
	if err != nil {
		return err
	}

	res := feed.Reconcile(previous, current)
	fmt.Printf("previous: %d events, current: %d events, %s\n", len(previous), len(current), res)
	now := time.Now()
	for _, e := range res.Delta {
		mark := ""
		if feed.IsRecent(e, recency.Window(), now) {
			mark = " (recent)"
		}
		fmt.Printf("  %-12s M%-4.1f %s%s\n", e.Code, e.DisplayMagnitude(), e.Place, mark)
	}
	if big, ok := res.Biggest(); ok {
		fmt.Printf("largest new event: %s M%.1f %s\n", big.Code, big.DisplayMagnitude(), big.Place)
	}
	return nil
}
