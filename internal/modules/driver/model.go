// README: Driver record and availability states.
package driver

import (
	"time"

	"ridedispatch/internal/types"
)

// Availability is the single shared mutable flag the engine is allowed to
// flip. All transitions go through Store.TryReserve / Store.Release.
type Availability string

const (
	StatusAvailable Availability = "AVAILABLE"
	StatusReserved  Availability = "RESERVED"
)

// Driver references a user identity rather than extending it; vehicle and
// position data live here, account data lives in the user module.
type Driver struct {
	ID           types.ID
	UserID       types.ID
	VehiclePlate string
	VehicleModel string
	VehicleYear  int
	VehicleColor string
	Rating       float64
	Position     types.Point
	Availability Availability
	UpdatedAt    time.Time
}
