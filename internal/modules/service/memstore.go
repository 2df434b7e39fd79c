// README: In-memory service record store with CAS status updates.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridedispatch/internal/types"
)

type MemStore struct {
	mu      sync.Mutex
	records map[types.ID]*Record
	events  []Event
	nextEID int64
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[types.ID]*Record), nextEID: 1}
}

func (s *MemStore) Create(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.records[cp.ID] = &cp
	*r = cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) ListByRequester(_ context.Context, requesterID types.ID) ([]Record, error) {
	return s.list(func(r *Record) bool { return r.RequesterID == requesterID })
}

func (s *MemStore) ListByDriver(_ context.Context, driverID types.ID) ([]Record, error) {
	return s.list(func(r *Record) bool { return r.DriverID == driverID })
}

func (s *MemStore) ListAll(_ context.Context) ([]Record, error) {
	return s.list(func(*Record) bool { return true })
}

func (s *MemStore) list(keep func(*Record) bool) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return false, nil
	}
	if r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	if reason != nil {
		v := *reason
		r.CancelReason = &v
	}
	r.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.ID = s.nextEID
	s.nextEID++
	s.events = append(s.events, cp)
	return nil
}

// Events returns a copy of the audit trail for a record, oldest first.
func (s *MemStore) Events(recordID types.ID) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out
}
