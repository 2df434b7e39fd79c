// README: Pure nearest-candidate selection over a driver slice.
package matching

import (
	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/geo"
	"ridedispatch/internal/types"
)

// Nearest returns the candidate closest to pickup and its distance in km.
// Ties resolve to the earliest candidate in the input ordering, so the result
// is deterministic for a given slice. ok is false for an empty candidate set.
// Candidates are not mutated.
func Nearest(pickup types.Point, candidates []driver.Driver) (best driver.Driver, distanceKm float64, ok bool) {
	for i, c := range candidates {
		d := geo.DistanceKm(pickup, c.Position)
		if i == 0 || d < distanceKm {
			best = c
			distanceKm = d
			ok = true
		}
	}
	return best, distanceKm, ok
}
