// README: Dispatch engine tests; the contention ones matter, run with -race.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/eta"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/types"
)

func newTestEngine(t *testing.T) (*Engine, *driver.MemStore, *service.Service) {
	t.Helper()
	drivers := driver.NewMemStore()
	records := service.NewMemStore()
	lifecycle := service.NewService(records, drivers, nil)

	est, err := eta.NewEstimator(eta.DefaultSpeedKmh, nil, nil)
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	eng, err := NewEngine(drivers, lifecycle, est, 16, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng, drivers, lifecycle
}

func seed(t *testing.T, s *driver.MemStore, id types.ID, lat, lng float64) {
	t.Helper()
	err := s.Save(context.Background(), &driver.Driver{
		ID:       id,
		UserID:   types.ID("u_" + id),
		Position: types.Point{Lat: lat, Lng: lng},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func mustRequest(t *testing.T, requester types.ID, p types.Point) PickupRequest {
	t.Helper()
	req, err := NewPickupRequest(requester, p)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

var pickup = types.Point{Lat: 25.0478, Lng: 121.5170}

func TestNewEngineRejectsBadBound(t *testing.T) {
	if _, err := NewEngine(driver.NewMemStore(), nil, nil, 0, nil); err == nil {
		t.Fatal("expected error for non-positive max attempts")
	}
}

func TestNewPickupRequestValidatesCoordinate(t *testing.T) {
	_, err := NewPickupRequest("c1", types.Point{Lat: 91, Lng: 0})
	if !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestDispatchEmptyPool(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	out, err := eng.Dispatch(context.Background(), mustRequest(t, "c1", pickup))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.Assigned {
		t.Fatal("expected NoDriverAvailable for empty pool")
	}
}

func TestDispatchPicksNearestAndReserves(t *testing.T) {
	eng, drivers, _ := newTestEngine(t)
	ctx := context.Background()

	seed(t, drivers, "far", 25.0478, 121.6160)  // ~10 km
	seed(t, drivers, "near", 25.0478, 121.5319) // ~1.5 km
	seed(t, drivers, "mid", 25.0478, 121.5467)  // ~3 km

	out, err := eng.Dispatch(ctx, mustRequest(t, "c1", pickup))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !out.Assigned || out.Driver.ID != "near" {
		t.Fatalf("expected nearest driver 'near', got %+v", out)
	}
	if out.DistanceKm <= 0 || out.DistanceKm > 2 {
		t.Fatalf("unexpected distance %.2f km", out.DistanceKm)
	}
	if out.ETAMinutes < 1 || out.ETAMinutes > 3 {
		t.Fatalf("unexpected eta %d min", out.ETAMinutes)
	}
	if out.Record == nil || out.Record.Status != service.StatusAssigned {
		t.Fatalf("expected an ASSIGNED record, got %+v", out.Record)
	}

	d, err := drivers.Get(ctx, "near")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Availability != driver.StatusReserved {
		t.Fatalf("assigned driver must be RESERVED, got %s", d.Availability)
	}
}

func TestDispatchFallsBackToNextNearest(t *testing.T) {
	eng, drivers, _ := newTestEngine(t)
	ctx := context.Background()

	seed(t, drivers, "near", 25.0478, 121.5319)
	seed(t, drivers, "mid", 25.0478, 121.5467)

	// someone else grabs the nearest between snapshot and claim
	snapshot, _ := drivers.ListAvailable(ctx)
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 available, got %d", len(snapshot))
	}
	if ok, _ := drivers.TryReserve(ctx, "near"); !ok {
		t.Fatal("pre-reserve failed")
	}

	out, err := eng.Dispatch(ctx, mustRequest(t, "c1", pickup))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !out.Assigned || out.Driver.ID != "mid" {
		t.Fatalf("expected fallback to 'mid', got %+v", out)
	}
}

func TestConcurrentDispatchSingleDriver(t *testing.T) {
	eng, drivers, _ := newTestEngine(t)
	ctx := context.Background()
	seed(t, drivers, "d1", 25.0478, 121.5319)

	const callers = 8
	outs := make(chan Outcome, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			req := mustRequest(t, types.ID(fmt.Sprintf("c%d", n)), pickup)
			out, err := eng.Dispatch(ctx, req)
			if err != nil {
				t.Errorf("dispatch: %v", err)
				return
			}
			outs <- out
		}(i)
	}

	close(start)
	wg.Wait()
	close(outs)

	assigned := 0
	for out := range outs {
		if out.Assigned {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("expected exactly 1 assignment for a pool of 1, got %d", assigned)
	}
}

func TestConcurrentDispatchDistinctDrivers(t *testing.T) {
	eng, drivers, _ := newTestEngine(t)
	ctx := context.Background()

	const pool = 3
	for i := 0; i < pool; i++ {
		seed(t, drivers, types.ID(fmt.Sprintf("d%d", i)), 25.0478+float64(i)*0.001, 121.5319)
	}

	const callers = 7 // more requests than drivers
	outs := make(chan Outcome, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			req := mustRequest(t, types.ID(fmt.Sprintf("c%d", n)), pickup)
			out, err := eng.Dispatch(ctx, req)
			if err != nil {
				t.Errorf("dispatch: %v", err)
				return
			}
			outs <- out
		}(i)
	}

	close(start)
	wg.Wait()
	close(outs)

	claimed := map[types.ID]int{}
	assigned := 0
	for out := range outs {
		if out.Assigned {
			assigned++
			claimed[out.Driver.ID]++
		}
	}
	if assigned != pool {
		t.Fatalf("expected exactly %d assignments, got %d", pool, assigned)
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("driver %s assigned %d times", id, n)
		}
	}
}

// failingCreator simulates record persistence failing after the reservation.
type failingCreator struct{}

func (failingCreator) CreateAssigned(context.Context, service.CreateAssignedCommand) (*service.Record, error) {
	return nil, errors.New("insert failed")
}

func TestDispatchReleasesOnRecordFailure(t *testing.T) {
	drivers := driver.NewMemStore()
	est, _ := eta.NewEstimator(eta.DefaultSpeedKmh, nil, nil)
	eng, err := NewEngine(drivers, failingCreator{}, est, 16, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	ctx := context.Background()
	seed(t, drivers, "d1", 25.0478, 121.5319)

	if _, err := eng.Dispatch(ctx, mustRequest(t, "c1", pickup)); err == nil {
		t.Fatal("expected error from record creation")
	}
	d, _ := drivers.Get(ctx, "d1")
	if d.Availability != driver.StatusAvailable {
		t.Fatalf("driver must be released after record failure, got %s", d.Availability)
	}
}

func TestCompletedDriverDispatchableAgain(t *testing.T) {
	eng, drivers, lifecycle := newTestEngine(t)
	ctx := context.Background()
	seed(t, drivers, "d1", 25.0478, 121.5319)

	out, err := eng.Dispatch(ctx, mustRequest(t, "c1", pickup))
	if err != nil || !out.Assigned {
		t.Fatalf("dispatch: %v (assigned=%v)", err, out.Assigned)
	}

	drv := service.Actor{ID: out.Driver.ID, Role: service.RoleDriver}
	if _, err := lifecycle.Start(ctx, service.StartCommand{RecordID: out.Record.ID, Actor: drv}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := lifecycle.Complete(ctx, service.CompleteCommand{RecordID: out.Record.ID, Actor: drv}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// the released driver is immediately eligible again
	out2, err := eng.Dispatch(ctx, mustRequest(t, "c2", pickup))
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if !out2.Assigned || out2.Driver.ID != "d1" {
		t.Fatalf("expected d1 to be dispatchable again, got %+v", out2)
	}
}
