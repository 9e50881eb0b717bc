// Package feed holds the geographic feature model and the logic that
// reconciles successive snapshots of a live event feed.
package feed

import (
	"image/color"
	"time"

	"github.com/google/uuid"
)

// Point is a bare geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Feature is anything placed on the map. The ID is opaque and may be
// regenerated for every snapshot.
type Feature struct {
	ID     uuid.UUID
	Lat    float64
	Lon    float64
	Weight float64
	Label  string
	Color  color.Color
}

func (f Feature) Location() Point {
	return Point{Lat: f.Lat, Lon: f.Lon}
}

// Event is a single time stamped occurrence in the feed, an earthquake in
// practice. Code is the identity that survives across snapshots.
type Event struct {
	Feature
	Code              string
	Time              time.Time
	Cluster           bool
	GreatestMagnitude float64
	Place             string
	Depth             float64
}

// NewEvent builds an event with a fresh opaque id. The timestamp is
// normalized to UTC.
func NewEvent(code string, lat, lon, magnitude float64, at time.Time) Event {
	return Event{
		Feature: Feature{
			ID:     uuid.New(),
			Lat:    lat,
			Lon:    lon,
			Weight: magnitude,
		},
		Code:              code,
		Time:              at.UTC(),
		GreatestMagnitude: magnitude,
	}
}

// Magnitude is the event's own magnitude.
func (e Event) Magnitude() float64 {
	return e.Weight
}

// DisplayMagnitude is the magnitude used for sizing and ordering glyphs:
// the greatest member magnitude for clusters, otherwise the event's own.
func (e Event) DisplayMagnitude() float64 {
	if e.Cluster {
		return e.GreatestMagnitude
	}
	return e.Weight
}

// Age is the time elapsed since the event at now. Both instants are compared
// in absolute time so the local zone of the display does not matter.
func (e Event) Age(now time.Time) time.Duration {
	return now.UTC().Sub(e.Time.UTC())
}

type City struct {
	Feature
	Country    string
	Population int
}

// Region is a rectangular area of interest. Fallback regions are
// placeholders and are never drawn.
type Region struct {
	ID         uuid.UUID
	Name       string
	UpperLeft  Point
	LowerRight Point
	Color      color.Color
	Fallback   bool
}

type SiteCategory int

const (
	SiteCultural SiteCategory = iota
	SiteNatural
	SiteMixed
)

func (c SiteCategory) String() string {
	switch c {
	case SiteNatural:
		return "Natural"
	case SiteMixed:
		return "Mixed"
	default:
		return "Cultural"
	}
}

// Site is a point of interest such as a world heritage site.
type Site struct {
	Feature
	Category SiteCategory
}
