// README: User records; plain storage, no engine logic. Backs actor-role
// resolution for the lifecycle.
package user

import (
	"context"
	"errors"
	"time"

	"ridedispatch/internal/types"
)

type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        types.ID
	Name      string
	Phone     string
	Role      Role
	CreatedAt time.Time
}

var ErrNotFound = errors.New("user not found")

type Store interface {
	Save(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	List(ctx context.Context) ([]User, error)
}
