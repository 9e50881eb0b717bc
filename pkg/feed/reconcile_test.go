package feed

import (
	"math/rand"
	"testing"
	"time"
)

func quake(code string, mag float64) Event {
	return NewEvent(code, 10, 20, mag, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func codes(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Code
	}
	return out
}

func TestReconcile(t *testing.T) {
	a, b, c := quake("1", 4.1), quake("2", 5.2), quake("3", 6.3)

	tests := []struct {
		name          string
		previous      []Event
		candidate     []Event
		wantIdentical bool
		wantDelta     []string
	}{
		{"both empty", nil, nil, true, nil},
		{"same order", []Event{a, b}, []Event{a, b}, true, nil},
		{"reordered", []Event{a, b, c}, []Event{c, a, b}, true, nil},
		{"added and removed", []Event{a, b}, []Event{b, c}, false, []string{"3"}},
		{"only removed", []Event{a, b, c}, []Event{a}, false, nil},
		{"from empty", nil, []Event{c, a}, false, []string{"3", "1"}},
		{"same size different codes", []Event{a}, []Event{c}, false, []string{"3"}},
	}

	for _, tt := range tests {
		got := Reconcile(tt.previous, tt.candidate)
		if got.Identical != tt.wantIdentical {
			t.Errorf("%s: Identical = %v; want %v", tt.name, got.Identical, tt.wantIdentical)
		}
		gotCodes := codes(got.Delta)
		if len(gotCodes) != len(tt.wantDelta) {
			t.Errorf("%s: delta = %v; want %v", tt.name, gotCodes, tt.wantDelta)
			continue
		}
		for i := range gotCodes {
			if gotCodes[i] != tt.wantDelta[i] {
				t.Errorf("%s: delta = %v; want %v", tt.name, gotCodes, tt.wantDelta)
				break
			}
		}
	}
}

func TestReconcileOrderIndependence(t *testing.T) {
	var events []Event
	for i := 0; i < 50; i++ {
		events = append(events, quake(string(rune('A'+i%26))+string(rune('a'+i/26)), float64(i)/10))
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Event(nil), events...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if r := Reconcile(events, shuffled); !r.Identical {
			t.Fatalf("shuffle %d reported a difference: %v", i, r)
		}
	}
}

func TestReconcileDoesNotMutate(t *testing.T) {
	prev := []Event{quake("b", 1), quake("a", 2)}
	cand := []Event{quake("c", 1), quake("a", 2)}
	Reconcile(prev, cand)
	if prev[0].Code != "b" || cand[0].Code != "c" {
		t.Errorf("inputs were reordered: %v %v", codes(prev), codes(cand))
	}
}

func TestResultBiggest(t *testing.T) {
	r := Reconcile(nil, []Event{quake("1", 4.5), quake("2", 7.1), quake("3", 5)})
	big, ok := r.Biggest()
	if !ok || big.Code != "2" {
		t.Errorf("Biggest() = %v, %v; want code 2", big.Code, ok)
	}
	if _, ok := (Result{Identical: true}).Biggest(); ok {
		t.Error("Biggest() on identical result should report nothing")
	}
}
