// README: Driver store contract; reservation is a conditional update, never a
// read followed by a separate write.
package driver

import (
	"context"
	"errors"

	"ridedispatch/internal/types"
)

var ErrNotFound = errors.New("driver not found")

// Store owns driver records and the availability flag.
//
// TryReserve and Release are the only ways availability changes. TryReserve
// transitions AVAILABLE→RESERVED atomically and reports false when the driver
// was already reserved or does not exist; losing that race is an expected
// outcome, not an error. Release transitions RESERVED→AVAILABLE and is
// idempotent.
type Store interface {
	Save(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	GetByUserID(ctx context.Context, userID types.ID) (*Driver, error)
	ListAvailable(ctx context.Context) ([]Driver, error)
	TryReserve(ctx context.Context, id types.ID) (bool, error)
	Release(ctx context.Context, id types.ID) error
	UpdateLocation(ctx context.Context, id types.ID, p types.Point) error
}
