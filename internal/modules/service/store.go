// README: Service record store contract; status changes are conditional
// updates keyed on the expected current status and version.
package service

import (
	"context"

	"ridedispatch/internal/types"
)

type Store interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id types.ID) (*Record, error)
	ListByRequester(ctx context.Context, requesterID types.ID) ([]Record, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)

	// UpdateStatus applies from→to only if the record still carries (from,
	// version); reports false when another transition won the race. reason is
	// persisted when non-nil (cancellations).
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)

	AppendEvent(ctx context.Context, e *Event) error
}
