package feed

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Recency selects how long after occurrence an event counts as recent.
type Recency int

const (
	RecentHalfDay Recency = iota
	RecentDay
	RecentTwoDays
	RecentThreeDays
	RecentWeek
	RecentTenDays
)

var recencyNames = map[Recency]string{
	RecentHalfDay:   "12h",
	RecentDay:       "1d",
	RecentTwoDays:   "2d",
	RecentThreeDays: "3d",
	RecentWeek:      "7d",
	RecentTenDays:   "10d",
}

const day = 24 * time.Hour

var recencyWindows = map[Recency]time.Duration{
	RecentHalfDay:   12 * time.Hour,
	RecentDay:       day,
	RecentTwoDays:   2 * day,
	RecentThreeDays: 3 * day,
	RecentWeek:      7 * day,
	RecentTenDays:   10 * day,
}

// Window returns the duration of the recency setting. Unknown values fall
// back to one day.
func (r Recency) Window() time.Duration {
	if w, ok := recencyWindows[r]; ok {
		return w
	}
	return day
}

func (r Recency) String() string {
	if s, ok := recencyNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Recency(%d)", int(r))
}

func ParseRecency(s string) (Recency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range recencyNames {
		if name == s {
			return r, nil
		}
	}
	return RecentDay, fmt.Errorf("unknown recency %q", s)
}

// IsRecent reports whether the event's age at now is within window.
func IsRecent(e Event, window time.Duration, now time.Time) bool {
	return e.Age(now) <= window
}

// MagnitudeRange buckets magnitudes into whole-number bands starting at
// MinBandMagnitude. Values below the first band land in it; values above
// the last land in the last.
type MagnitudeRange int

const (
	Mag4 MagnitudeRange = iota
	Mag5
	Mag6
	Mag7
	Mag8
	Mag9
)

const MinBandMagnitude = 4.0

func RangeFor(magnitude float64) MagnitudeRange {
	offset := magnitude - MinBandMagnitude
	if offset < 0 || math.IsNaN(offset) {
		return Mag4
	}
	i := int(offset)
	if i > int(Mag9) {
		return Mag9
	}
	return MagnitudeRange(i)
}

func (m MagnitudeRange) String() string {
	return fmt.Sprintf("M%d", int(m)+int(MinBandMagnitude))
}
