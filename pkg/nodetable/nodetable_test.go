package nodetable

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

func TestTable(t *testing.T) {
	tbl := New()
	id := tbl.Add(Item{Class: ClassMisc, Name: "marker"})
	if id == uuid.Nil {
		t.Fatal("Add did not assign an id")
	}
	if item, ok := tbl.Get(id); !ok || item.Name != "marker" {
		t.Errorf("Get = %+v, %v", item, ok)
	}

	tbl.AddCities([]feed.City{{Feature: feed.Feature{Label: "Lima", Lat: -12, Lon: -77}}})
	tbl.AddRegions([]feed.Region{{Name: "ring", UpperLeft: feed.Point{Lat: 10, Lon: 0}, LowerRight: feed.Point{Lat: 0, Lon: 20}}})
	tbl.AddSites([]feed.Site{{Feature: feed.Feature{Label: "Machu Picchu"}, Category: feed.SiteMixed}})
	if tbl.Count(ClassCity) != 1 || tbl.Count(ClassRegion) != 1 || tbl.Count(ClassSite) != 1 {
		t.Errorf("counts: city=%d region=%d site=%d", tbl.Count(ClassCity), tbl.Count(ClassRegion), tbl.Count(ClassSite))
	}

	if n := tbl.RemoveClass(ClassMisc); n != 1 {
		t.Errorf("RemoveClass removed %d; want 1", n)
	}
	if _, ok := tbl.Get(id); ok {
		t.Error("removed item still present")
	}
}

func TestReplaceEvents(t *testing.T) {
	tbl := New()
	now := time.Now()
	first := []feed.Event{feed.NewEvent("a", 0, 0, 5, now), feed.NewEvent("b", 0, 0, 6, now)}
	tbl.ReplaceEvents(first)
	tbl.AddCities([]feed.City{{Feature: feed.Feature{Label: "Lima"}}})
	if tbl.Count(ClassEvent) != 2 {
		t.Fatalf("Count(event) = %d; want 2", tbl.Count(ClassEvent))
	}

	second := []feed.Event{feed.NewEvent("a", 0, 0, 5, now)}
	second[0].Place = "Pacific"
	tbl.ReplaceEvents(second)
	if tbl.Count(ClassEvent) != 1 || tbl.Count(ClassCity) != 1 {
		t.Errorf("after replace: events=%d cities=%d", tbl.Count(ClassEvent), tbl.Count(ClassCity))
	}
	if _, ok := tbl.Get(first[0].ID); ok {
		t.Error("old snapshot id still resolves")
	}
	item, ok := tbl.Get(second[0].ID)
	if !ok || item.Description != "M5.0 Pacific" {
		t.Errorf("Get = %+v, %v", item, ok)
	}
}
