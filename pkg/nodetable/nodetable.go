// Package nodetable is the identity table for everything drawn on the map.
// One Table is owned by the engine and handed to whatever needs lookups.
package nodetable

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

type Class int

const (
	ClassCity Class = iota
	ClassEvent
	ClassSite
	ClassRegion
	ClassMisc
)

func (c Class) String() string {
	switch c {
	case ClassCity:
		return "city"
	case ClassEvent:
		return "event"
	case ClassSite:
		return "site"
	case ClassRegion:
		return "region"
	}
	return "misc"
}

// Item describes one identified map object.
type Item struct {
	ID          uuid.UUID
	Class       Class
	Name        string
	Numeric     float64
	Lat, Lon    float64
	Description string
}

type Table struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Item
}

func New() *Table {
	return &Table{items: make(map[uuid.UUID]Item)}
}

// Add stores item, assigning an id when it has none, and returns the id.
func (t *Table) Add(item Item) uuid.UUID {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	t.mu.Lock()
	t.items[item.ID] = item
	t.mu.Unlock()
	return item.ID
}

func (t *Table) Get(id uuid.UUID) (Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	return item, ok
}

// RemoveClass drops every item of class c and returns how many went.
func (t *Table) RemoveClass(c Class) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, item := range t.items {
		if item.Class == c {
			delete(t.items, id)
			n++
		}
	}
	return n
}

func (t *Table) Count(c Class) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, item := range t.items {
		if item.Class == c {
			n++
		}
	}
	return n
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// ReplaceEvents swaps the event entries for a new snapshot. Event ids are
// regenerated per snapshot, so the previous entries are dropped wholesale.
func (t *Table) ReplaceEvents(events []feed.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, item := range t.items {
		if item.Class == ClassEvent {
			delete(t.items, id)
		}
	}
	for _, e := range events {
		t.items[e.ID] = Item{
			ID:          e.ID,
			Class:       ClassEvent,
			Name:        e.Code,
			Numeric:     e.DisplayMagnitude(),
			Lat:         e.Lat,
			Lon:         e.Lon,
			Description: describe(e),
		}
	}
}

func (t *Table) AddCities(cities []feed.City) {
	for _, c := range cities {
		t.Add(Item{ID: c.ID, Class: ClassCity, Name: c.Label, Numeric: float64(c.Population), Lat: c.Lat, Lon: c.Lon})
	}
}

func (t *Table) AddSites(sites []feed.Site) {
	for _, s := range sites {
		t.Add(Item{ID: s.ID, Class: ClassSite, Name: s.Label, Lat: s.Lat, Lon: s.Lon, Description: s.Category.String()})
	}
}

func (t *Table) AddRegions(regions []feed.Region) {
	for _, r := range regions {
		t.Add(Item{
			ID:    r.ID,
			Class: ClassRegion,
			Name:  r.Name,
			Lat:   (r.UpperLeft.Lat + r.LowerRight.Lat) / 2,
			Lon:   (r.UpperLeft.Lon + r.LowerRight.Lon) / 2,
		})
	}
}

func describe(e feed.Event) string {
	if e.Place != "" {
		return fmt.Sprintf("M%.1f %s", e.DisplayMagnitude(), e.Place)
	}
	return fmt.Sprintf("M%.1f", e.DisplayMagnitude())
}
