// Package indicator tracks the transient highlight shown over each recent
// event, keyed by event code.
package indicator

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/geo"
)

// Style is how recent events are highlighted. StyleNone disables
// highlighting and releases every indicator.
type Style int

const (
	StyleNone Style = iota
	StyleAnimatedRing
	StyleStaticRing
	StyleGlowingSphere
	StyleRadiatingRings
)

var styleNames = [...]string{"none", "animated-ring", "static-ring", "glowing-sphere", "radiating-rings"}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return StyleNone, fmt.Errorf("unknown highlight style %q", name)
}

// Handle is one live indicator. Handles are never reused: once released a
// handle stays released and a new one is created if needed.
type Handle struct {
	ID        uuid.UUID
	Code      string
	Lat, Lon  float64
	Style     Style
	EventTime time.Time
	CreatedAt time.Time
	Daylit    bool
	released  bool
}

func (h *Handle) Released() bool {
	return h.released
}

// Manager owns the code to handle map. Renderers may read it through Has,
// Len and Snapshot; only the Manager changes it.
type Manager struct {
	mu      sync.Mutex
	handles map[string]*Handle

	clock     func() time.Time
	daylit    func(lat, lon float64, t time.Time) bool
	onRelease func(*Handle)
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithDaylight replaces the solar position function.
func WithDaylight(fn func(lat, lon float64, t time.Time) bool) Option {
	return func(m *Manager) { m.daylit = fn }
}

// WithReleaseHook is called, with the lock held, for every released handle.
func WithReleaseHook(fn func(*Handle)) Option {
	return func(m *Manager) { m.onRelease = fn }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		handles: make(map[string]*Handle),
		clock:   time.Now,
		daylit:  geo.IsDaylit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) now() time.Time {
	return m.clock().UTC()
}

// Tick retires indicators. With StyleNone every handle is released;
// otherwise handles whose event is older than window are. Tick never
// creates handles and is safe to call on every frame.
func (m *Manager) Tick(events []feed.Event, style Style, window time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick(events, style, window, m.now())
}

func (m *Manager) tick(events []feed.Event, style Style, window time.Duration, now time.Time) {
	if style == StyleNone {
		for code, h := range m.handles {
			m.release(code, h)
		}
		return
	}
	for _, e := range events {
		if e.Age(now) <= window {
			continue
		}
		if h, ok := m.handles[e.Code]; ok {
			m.release(e.Code, h)
		}
	}
	for _, h := range m.handles {
		h.Daylit = m.daylit(h.Lat, h.Lon, now)
	}
}

// Ensure returns the handle for e, creating it when highlighting is on, e
// is within window and no handle exists for its code yet. The boolean
// reports whether a handle was created by this call.
func (m *Manager) Ensure(e feed.Event, style Style, window time.Duration) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensure(e, style, window, m.now())
}

func (m *Manager) ensure(e feed.Event, style Style, window time.Duration, now time.Time) (*Handle, bool) {
	if h, ok := m.handles[e.Code]; ok {
		return h, false
	}
	if style == StyleNone || e.Age(now) > window {
		return nil, false
	}
	h := &Handle{
		ID:        uuid.New(),
		Code:      e.Code,
		Lat:       e.Lat,
		Lon:       e.Lon,
		Style:     style,
		EventTime: e.Time.UTC(),
		CreatedAt: now,
		Daylit:    m.daylit(e.Lat, e.Lon, now),
	}
	m.handles[e.Code] = h
	return h, true
}

// Sync retires stale indicators and then creates any missing ones for the
// current events, all against the same instant. It returns the number of
// handles created.
func (m *Manager) Sync(events []feed.Event, style Style, window time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.tick(events, style, window, now)
	created := 0
	for _, e := range events {
		if _, ok := m.ensure(e, style, window, now); ok {
			created++
		}
	}
	return created
}

// Prune releases handles whose code is no longer in the current snapshot.
func (m *Manager) Prune(events []feed.Event) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := make(map[string]struct{}, len(events))
	for _, e := range events {
		live[e.Code] = struct{}{}
	}
	n := 0
	for code, h := range m.handles {
		if _, ok := live[code]; !ok {
			m.release(code, h)
			n++
		}
	}
	return n
}

func (m *Manager) release(code string, h *Handle) {
	h.released = true
	delete(m.handles, code)
	if m.onRelease != nil {
		m.onRelease(h)
	}
	log.Printf("[INDICATOR] released %s (%s)", code, h.Style)
}

func (m *Manager) Has(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[code]
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Snapshot returns copies of the live handles ordered by code.
func (m *Manager) Snapshot() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Handle, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
