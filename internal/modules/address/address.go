// README: Saved pickup addresses; coordinates are validated on save so a
// stored address is always dispatchable.
package address

import (
	"context"
	"errors"
	"time"

	"ridedispatch/internal/types"
)

type Address struct {
	ID        types.ID
	UserID    types.ID
	Label     string
	Street    string
	City      string
	Position  types.Point
	CreatedAt time.Time
}

var ErrNotFound = errors.New("address not found")

type Store interface {
	Save(ctx context.Context, a *Address) error
	Get(ctx context.Context, id types.ID) (*Address, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Address, error)
}
