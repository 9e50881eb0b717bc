package indicator

import (
	"testing"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestManager(clock *fakeClock, released *[]string) *Manager {
	return NewManager(
		WithClock(clock.Now),
		WithDaylight(func(lat, lon float64, t time.Time) bool { return lon >= 0 }),
		WithReleaseHook(func(h *Handle) { *released = append(*released, h.Code) }),
	)
}

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestSingleOwnership(t *testing.T) {
	clock := &fakeClock{now: start}
	var released []string
	m := newTestManager(clock, &released)
	e := feed.NewEvent("us1", 10, 20, 5.5, start.Add(-time.Hour))
	events := []feed.Event{e}

	h1, created := m.Ensure(e, StyleStaticRing, 24*time.Hour)
	if !created || h1 == nil {
		t.Fatal("first Ensure did not create a handle")
	}
	m.Tick(events, StyleStaticRing, 24*time.Hour)
	m.Tick(events, StyleStaticRing, 24*time.Hour)
	h2, created := m.Ensure(e, StyleStaticRing, 24*time.Hour)
	if created || h2 != h1 {
		t.Error("second Ensure created a duplicate handle")
	}
	if n := m.Sync(events, StyleStaticRing, 24*time.Hour); n != 0 {
		t.Errorf("Sync created %d handles; want 0", n)
	}
	if m.Len() != 1 || !m.Has("us1") {
		t.Errorf("Len() = %d, Has(us1) = %v", m.Len(), m.Has("us1"))
	}
	if len(released) != 0 {
		t.Errorf("unexpected releases: %v", released)
	}
}

func TestRecencyExpiry(t *testing.T) {
	clock := &fakeClock{now: start}
	var released []string
	m := newTestManager(clock, &released)
	window := time.Hour
	e := feed.NewEvent("us2", 0, 0, 6, start.Add(-30*time.Minute))

	if n := m.Sync([]feed.Event{e}, StyleAnimatedRing, window); n != 1 {
		t.Fatalf("Sync created %d; want 1", n)
	}
	h, _ := m.Ensure(e, StyleAnimatedRing, window)

	// age = window + 1s
	clock.now = e.Time.Add(window + time.Second)
	m.Tick([]feed.Event{e}, StyleAnimatedRing, window)
	if m.Has("us2") {
		t.Fatal("expired indicator still present")
	}
	if !h.Released() {
		t.Error("expired handle not marked released")
	}
	if len(released) != 1 || released[0] != "us2" {
		t.Errorf("released = %v", released)
	}

	if n := m.Sync([]feed.Event{e}, StyleAnimatedRing, window); n != 0 || m.Has("us2") {
		t.Error("indicator recreated for an expired event")
	}

	fresher := feed.NewEvent("us2", 0, 0, 6, clock.now.Add(-time.Minute))
	h2, created := m.Ensure(fresher, StyleAnimatedRing, window)
	if !created || h2 == h || h2.ID == h.ID {
		t.Error("fresher occurrence did not get a new handle")
	}
}

func TestStyleNoneReleasesAll(t *testing.T) {
	clock := &fakeClock{now: start}
	var released []string
	m := newTestManager(clock, &released)
	events := []feed.Event{
		feed.NewEvent("a", 0, 0, 5, start),
		feed.NewEvent("b", 0, 0, 5, start),
	}
	m.Sync(events, StyleGlowingSphere, time.Hour)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", m.Len())
	}

	m.Tick(events, StyleNone, time.Hour)
	if m.Len() != 0 || len(released) != 2 {
		t.Errorf("Len() = %d, released = %v", m.Len(), released)
	}
	if _, created := m.Ensure(events[0], StyleNone, time.Hour); created {
		t.Error("Ensure created a handle with highlighting disabled")
	}
}

func TestAgeUsesAbsoluteTime(t *testing.T) {
	zone := time.FixedZone("UTC-10", -10*3600)
	clock := &fakeClock{now: start.In(zone)}
	var released []string
	m := newTestManager(clock, &released)

	e := feed.NewEvent("z", 0, 0, 5, start.Add(-50*time.Minute))
	if _, created := m.Ensure(e, StyleStaticRing, time.Hour); !created {
		t.Error("event 50 minutes old was not treated as recent in a non-UTC zone")
	}
}

func TestDaylightRefresh(t *testing.T) {
	clock := &fakeClock{now: start}
	var released []string
	m := newTestManager(clock, &released)
	events := []feed.Event{
		feed.NewEvent("east", 0, 100, 5, start),
		feed.NewEvent("west", 0, -100, 5, start),
	}
	m.Sync(events, StyleRadiatingRings, time.Hour)
	snap := m.Snapshot()
	if len(snap) != 2 || snap[0].Code != "east" || snap[1].Code != "west" {
		t.Fatalf("Snapshot = %+v", snap)
	}
	if !snap[0].Daylit || snap[1].Daylit {
		t.Errorf("daylight flags = %v, %v", snap[0].Daylit, snap[1].Daylit)
	}
	if snap[0].Style != StyleRadiatingRings || !snap[0].CreatedAt.Equal(start) {
		t.Errorf("handle = %+v", snap[0])
	}
}

func TestPrune(t *testing.T) {
	clock := &fakeClock{now: start}
	var released []string
	m := newTestManager(clock, &released)
	a := feed.NewEvent("a", 0, 0, 5, start)
	b := feed.NewEvent("b", 0, 0, 5, start)
	m.Sync([]feed.Event{a, b}, StyleStaticRing, time.Hour)

	if n := m.Prune([]feed.Event{b}); n != 1 {
		t.Errorf("Prune removed %d; want 1", n)
	}
	if m.Has("a") || !m.Has("b") {
		t.Error("Prune kept the wrong handles")
	}
}

func TestParseStyle(t *testing.T) {
	for i := StyleNone; i <= StyleRadiatingRings; i++ {
		got, err := ParseStyle(i.String())
		if err != nil || got != i {
			t.Errorf("ParseStyle(%q) = %v, %v", i.String(), got, err)
		}
	}
	if _, err := ParseStyle("sparkles"); err == nil {
		t.Error("expected error for unknown style")
	}
}
