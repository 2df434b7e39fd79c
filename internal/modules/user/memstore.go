// README: In-memory user store.
package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridedispatch/internal/types"
)

type MemStore struct {
	mu    sync.Mutex
	users map[types.ID]*User
}

func NewMemStore() *MemStore {
	return &MemStore{users: make(map[types.ID]*User)}
}

func (s *MemStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = types.NewID()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.users[cp.ID] = &cp
	*u = cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
