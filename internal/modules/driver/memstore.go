// README: In-memory driver store; a mutex-guarded map gives the same
// compare-and-swap semantics as the SQL store's conditional UPDATE.
package driver

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridedispatch/internal/types"
)

type MemStore struct {
	mu      sync.Mutex
	drivers map[types.ID]*Driver
}

func NewMemStore() *MemStore {
	return &MemStore{drivers: make(map[types.ID]*Driver)}
}

func (s *MemStore) Save(_ context.Context, d *Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	if cp.Availability == "" {
		cp.Availability = StatusAvailable
	}
	cp.UpdatedAt = time.Now()
	s.drivers[cp.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemStore) GetByUserID(_ context.Context, userID types.ID) (*Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drivers {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ListAvailable returns available drivers in a stable order so that the
// matcher's first-wins tie-break stays deterministic.
func (s *MemStore) ListAvailable(_ context.Context) ([]Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if d.Availability == StatusAvailable {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) TryReserve(_ context.Context, id types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok || d.Availability != StatusAvailable {
		return false, nil
	}
	d.Availability = StatusReserved
	d.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) Release(_ context.Context, id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil
	}
	// releasing an already-available driver is a no-op
	if d.Availability == StatusReserved {
		d.Availability = StatusAvailable
		d.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemStore) UpdateLocation(_ context.Context, id types.ID, p types.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return ErrNotFound
	}
	d.Position = p
	d.UpdatedAt = time.Now()
	return nil
}
