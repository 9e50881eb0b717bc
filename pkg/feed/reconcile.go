package feed

import (
	"sort"
	"strings"
)

// Result is the outcome of comparing two snapshots. Delta is only populated
// when the snapshots differ and holds the events that are new by code.
type Result struct {
	Identical bool
	Delta     []Event
}

// Reconcile compares the previously displayed snapshot with a candidate
// snapshot. Two snapshots are identical when they have the same number of
// events and the same codes once both are sorted by code; input order does
// not matter. Neither input is modified.
func Reconcile(previous, candidate []Event) Result {
	if sameCodes(previous, candidate) {
		return Result{Identical: true}
	}

	seen := make(map[string]struct{}, len(previous))
	for _, e := range previous {
		seen[e.Code] = struct{}{}
	}
	var delta []Event
	for _, e := range candidate {
		if _, ok := seen[e.Code]; !ok {
			delta = append(delta, e)
		}
	}
	return Result{Delta: delta}
}

func sameCodes(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	ac, bc := sortedCodes(a), sortedCodes(b)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

func sortedCodes(events []Event) []string {
	codes := make([]string, len(events))
	for i, e := range events {
		codes[i] = e.Code
	}
	sort.Strings(codes)
	return codes
}

// Biggest returns the delta event with the greatest display magnitude.
func (r Result) Biggest() (Event, bool) {
	if len(r.Delta) == 0 {
		return Event{}, false
	}
	best := r.Delta[0]
	for _, e := range r.Delta[1:] {
		if e.DisplayMagnitude() > best.DisplayMagnitude() {
			best = e
		}
	}
	return best, true
}

func (r Result) String() string {
	if r.Identical {
		return "identical"
	}
	codes := make([]string, len(r.Delta))
	for i, e := range r.Delta {
		codes[i] = e.Code
	}
	return "changed, new: [" + strings.Join(codes, ", ") + "]"
}
