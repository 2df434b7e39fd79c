// README: Service record aggregate, status definitions and actor roles.
package service

import (
	"time"

	"ridedispatch/internal/types"
)

type Status string

const (
	// StatusRequested is transient: assignment is synchronous with creation,
	// so it never reaches storage.
	StatusRequested  Status = "REQUESTED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AllowedTransitions represents the lifecycle state flow as code. Terminal
// states have no outgoing edges.
var AllowedTransitions = map[Status][]Status{
	StatusRequested:  {StatusAssigned},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Role is an explicit capability passed into the state machine; there is no
// type hierarchy between users and drivers.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Actor is whoever attempts a transition. Admins bypass actor restrictions
// but not the transition table itself.
type Actor struct {
	ID   types.ID
	Role Role
}

// Record is owned exclusively by this module: created at successful dispatch,
// mutated only through transitions, never deleted.
type Record struct {
	ID            types.ID
	RequesterID   types.ID
	DriverID      types.ID
	Pickup        types.Point
	Status        Status
	StatusVersion int
	DistanceKm    float64
	ETAMinutes    int
	CancelReason  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Event is the audit trail entry appended on every transition.
type Event struct {
	ID         int64
	RecordID   types.ID
	FromStatus Status
	ToStatus   Status
	ActorRole  Role
	ActorID    *types.ID
	Reason     *string
	CreatedAt  time.Time
}
