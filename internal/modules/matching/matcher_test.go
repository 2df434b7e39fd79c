package matching

import (
	"testing"

	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/types"
)

// pickup at Taipei Main Station; candidates at roughly 1.5, 3 and 10 km.
var pickup = types.Point{Lat: 25.0478, Lng: 121.5170}

func driverAt(id types.ID, lat, lng float64) driver.Driver {
	return driver.Driver{ID: id, Position: types.Point{Lat: lat, Lng: lng}}
}

func TestNearestPicksClosest(t *testing.T) {
	candidates := []driver.Driver{
		{ID: "far", Position: types.Point{Lat: 25.0478, Lng: 121.6160}},  // ~10 km east
		{ID: "near", Position: types.Point{Lat: 25.0478, Lng: 121.5319}}, // ~1.5 km east
		{ID: "mid", Position: types.Point{Lat: 25.0478, Lng: 121.5467}},  // ~3 km east
	}
	best, dist, ok := Nearest(pickup, candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if best.ID != "near" {
		t.Fatalf("expected driver 'near', got %s (%.2f km)", best.ID, dist)
	}
	if dist < 1.0 || dist > 2.0 {
		t.Fatalf("expected ~1.5 km, got %.2f", dist)
	}
}

func TestNearestEmptyCandidates(t *testing.T) {
	_, _, ok := Nearest(pickup, nil)
	if ok {
		t.Fatal("expected no match for empty candidate set")
	}
}

func TestNearestTieBreakFirstWins(t *testing.T) {
	// Two candidates at the exact same point: the earlier one must win.
	same := types.Point{Lat: 25.0500, Lng: 121.5200}
	candidates := []driver.Driver{
		driverAt("first", same.Lat, same.Lng),
		driverAt("second", same.Lat, same.Lng),
	}
	best, _, ok := Nearest(pickup, candidates)
	if !ok || best.ID != "first" {
		t.Fatalf("tie-break should keep the first candidate, got %s", best.ID)
	}
}

func TestNearestDoesNotMutate(t *testing.T) {
	candidates := []driver.Driver{
		driverAt("a", 25.05, 121.52),
		driverAt("b", 25.06, 121.53),
	}
	before := make([]driver.Driver, len(candidates))
	copy(before, candidates)

	Nearest(pickup, candidates)

	for i := range candidates {
		if candidates[i] != before[i] {
			t.Fatalf("candidate %d mutated: %+v != %+v", i, candidates[i], before[i])
		}
	}
}
