// README: Driver service tests over the in-memory store (no Redis index).
package driver_test

import (
	"context"
	"testing"

	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/geo"
	"ridedispatch/internal/types"
)

func seedDriver(t *testing.T, svc *driver.Service, userID string, p types.Point) types.ID {
	t.Helper()
	d := &driver.Driver{
		UserID:       types.ID(userID),
		VehiclePlate: "PLT-" + userID,
		Position:     p,
		Availability: driver.StatusAvailable,
	}
	if err := svc.Register(context.Background(), d); err != nil {
		t.Fatalf("register: %v", err)
	}
	return d.ID
}

func TestNearbyDriversOrderedByDistance(t *testing.T) {
	svc := driver.NewService(driver.NewMemStore(), nil, nil)
	pickup := types.Point{Lat: 25.0478, Lng: 121.5170}

	far := seedDriver(t, svc, "u-far", types.Point{Lat: 25.0478, Lng: 121.5500})
	near := seedDriver(t, svc, "u-near", types.Point{Lat: 25.0478, Lng: 121.5200})
	mid := seedDriver(t, svc, "u-mid", types.Point{Lat: 25.0478, Lng: 121.5350})

	got, err := svc.NearbyDrivers(context.Background(), pickup, 5.0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	want := []types.ID{near, mid, far}
	if len(got) != len(want) {
		t.Fatalf("expected %d drivers, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestNearbyDriversRadiusCutoff(t *testing.T) {
	svc := driver.NewService(driver.NewMemStore(), nil, nil)
	pickup := types.Point{Lat: 25.0478, Lng: 121.5170}

	inside := seedDriver(t, svc, "u-in", types.Point{Lat: 25.0500, Lng: 121.5200})
	seedDriver(t, svc, "u-out", types.Point{Lat: 25.5000, Lng: 122.0000})

	d := geo.DistanceKm(pickup, types.Point{Lat: 25.5000, Lng: 122.0000})
	if d <= 5.0 {
		t.Fatalf("fixture too close: %v km", d)
	}

	got, err := svc.NearbyDrivers(context.Background(), pickup, 5.0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside {
		t.Errorf("expected only %s inside radius, got %+v", inside, got)
	}
}

func TestNearbyExcludesReservedDrivers(t *testing.T) {
	svc := driver.NewService(driver.NewMemStore(), nil, nil)
	pickup := types.Point{Lat: 25.0478, Lng: 121.5170}

	a := seedDriver(t, svc, "u-a", types.Point{Lat: 25.0480, Lng: 121.5200})
	b := seedDriver(t, svc, "u-b", types.Point{Lat: 25.0480, Lng: 121.5250})

	won, err := svc.TryReserve(context.Background(), a)
	if err != nil || !won {
		t.Fatalf("reserve: won=%v err=%v", won, err)
	}

	got, err := svc.NearbyDrivers(context.Background(), pickup, 5.0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(got) != 1 || got[0].ID != b {
		t.Errorf("expected only %s after reserving %s, got %+v", b, a, got)
	}

	if err := svc.Release(context.Background(), a); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, err = svc.NearbyDrivers(context.Background(), pickup, 5.0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected both drivers after release, got %d", len(got))
	}
}

func TestGetByUser(t *testing.T) {
	svc := driver.NewService(driver.NewMemStore(), nil, nil)
	id := seedDriver(t, svc, "u-owner", types.Point{Lat: 25.0, Lng: 121.5})

	d, err := svc.GetByUser(context.Background(), "u-owner")
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if d.ID != id {
		t.Errorf("expected %s, got %s", id, d.ID)
	}
	if _, err := svc.GetByUser(context.Background(), "u-nobody"); err == nil {
		t.Error("expected an error for an unknown user")
	}
}
