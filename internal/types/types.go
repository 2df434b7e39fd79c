// README: Common value objects shared across modules.
package types

import (
	"errors"

	"github.com/google/uuid"
)

// ID identifies users, drivers, addresses and service records.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ErrInvalidCoordinate is returned for out-of-range latitude or longitude.
// Coordinates are validated at the boundary; geo math assumes valid input.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Validate checks lat ∈ [-90, 90] and lng ∈ [-180, 180].
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return ErrInvalidCoordinate
	}
	if p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}
