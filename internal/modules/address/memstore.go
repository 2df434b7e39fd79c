// README: In-memory address store.
package address

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridedispatch/internal/types"
)

type MemStore struct {
	mu    sync.Mutex
	addrs map[types.ID]*Address
}

func NewMemStore() *MemStore {
	return &MemStore{addrs: make(map[types.ID]*Address)}
}

func (s *MemStore) Save(_ context.Context, a *Address) error {
	if err := a.Position.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	if cp.ID == "" {
		cp.ID = types.NewID()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.addrs[cp.ID] = &cp
	*a = cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addrs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemStore) ListByUser(_ context.Context, userID types.ID) ([]Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Address
	for _, a := range s.addrs {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
