// README: Reservation semantics tests; the concurrency ones matter, run with -race.
package driver

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ridedispatch/internal/types"
)

func seedDriver(t *testing.T, s *MemStore, id types.ID) {
	t.Helper()
	err := s.Save(context.Background(), &Driver{
		ID:           id,
		UserID:       types.ID("u_" + id),
		VehiclePlate: "ABC-123",
		Position:     types.Point{Lat: 25.033, Lng: 121.565},
		Availability: StatusAvailable,
	})
	if err != nil {
		t.Fatalf("seed driver: %v", err)
	}
}

func TestTryReserveOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	seedDriver(t, s, "d1")

	ok, err := s.TryReserve(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}
	ok, err = s.TryReserve(ctx, "d1")
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if ok {
		t.Fatal("second reserve succeeded, expected lost race")
	}
}

func TestTryReserveUnknownDriver(t *testing.T) {
	s := NewMemStore()
	ok, err := s.TryReserve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("reserve unknown: %v", err)
	}
	if ok {
		t.Fatal("reserved a driver that does not exist")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	seedDriver(t, s, "d1")

	if ok, _ := s.TryReserve(ctx, "d1"); !ok {
		t.Fatal("reserve failed")
	}
	for i := 0; i < 2; i++ {
		if err := s.Release(ctx, "d1"); err != nil {
			t.Fatalf("release #%d: %v", i+1, err)
		}
		d, err := s.Get(ctx, "d1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if d.Availability != StatusAvailable {
			t.Fatalf("release #%d: availability = %s, want AVAILABLE", i+1, d.Availability)
		}
	}
}

func TestConcurrentReserveSingleDriver(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	seedDriver(t, s, "d1")

	const callers = 16
	wins := make(chan bool, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.TryReserve(ctx, "d1")
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			wins <- ok
		}()
	}

	close(start)
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly 1 successful reservation, got %d", won)
	}
}

func TestConcurrentReserveDistinctDrivers(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	const pool = 4
	for i := 0; i < pool; i++ {
		seedDriver(t, s, types.ID(fmt.Sprintf("d%d", i)))
	}

	// More callers than drivers; every driver must be claimed exactly once.
	const callers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := map[types.ID]int{}

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := types.ID(fmt.Sprintf("d%d", n%pool))
			ok, err := s.TryReserve(ctx, id)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if ok {
				mu.Lock()
				claimed[id]++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if len(claimed) != pool {
		t.Fatalf("expected %d distinct drivers claimed, got %d", pool, len(claimed))
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("driver %s claimed %d times", id, n)
		}
	}
}

func TestUpdateLocationUnknownDriver(t *testing.T) {
	s := NewMemStore()
	err := s.UpdateLocation(context.Background(), "ghost", types.Point{Lat: 1, Lng: 1})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
