package feed

import (
	"bytes"
	"time"

	"github.com/cloudflare/ahocorasick"
)

// Filter drops events the display should not show. A zero Filter keeps
// everything; MinMagnitude and MaxAge only apply when positive.
type Filter struct {
	MinMagnitude float64
	MaxAge       time.Duration
	// ExcludePlaces lists case-insensitive keywords; an event whose place
	// contains any of them is dropped.
	ExcludePlaces []string

	matcher *ahocorasick.Matcher
}

func NewFilter(minMagnitude float64, maxAge time.Duration, excludePlaces ...string) *Filter {
	f := &Filter{
		MinMagnitude:  minMagnitude,
		MaxAge:        maxAge,
		ExcludePlaces: excludePlaces,
	}
	if len(excludePlaces) > 0 {
		lowered := make([][]byte, len(excludePlaces))
		for i, p := range excludePlaces {
			lowered[i] = bytes.ToLower([]byte(p))
		}
		f.matcher = ahocorasick.NewMatcher(lowered)
	}
	return f
}

// Apply returns the events that pass the filter, in input order.
func (f *Filter) Apply(events []Event, now time.Time) []Event {
	if f == nil {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Keep(e, now) {
			out = append(out, e)
		}
	}
	return out
}

func (f *Filter) Keep(e Event, now time.Time) bool {
	if f.MinMagnitude > 0 && e.DisplayMagnitude() < f.MinMagnitude {
		return false
	}
	if f.MaxAge > 0 && e.Age(now) > f.MaxAge {
		return false
	}
	if f.matcher != nil && e.Place != "" {
		if len(f.matcher.MatchThreadSafe(bytes.ToLower([]byte(e.Place)))) > 0 {
			return false
		}
	}
	return true
}
