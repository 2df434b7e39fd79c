// README: Dispatch engine: snapshot the pool, walk candidates nearest-first,
// claim one atomically, create the assigned service record.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/eta"
	"ridedispatch/internal/modules/matching"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/types"
)

// PickupRequest is immutable once created.
type PickupRequest struct {
	ID          types.ID
	RequesterID types.ID
	Pickup      types.Point
	CreatedAt   time.Time
}

// NewPickupRequest validates the coordinate at the boundary; geo math never
// sees an out-of-range point.
func NewPickupRequest(requesterID types.ID, pickup types.Point) (PickupRequest, error) {
	if err := pickup.Validate(); err != nil {
		return PickupRequest{}, err
	}
	return PickupRequest{
		ID:          types.NewID(),
		RequesterID: requesterID,
		Pickup:      pickup,
		CreatedAt:   time.Now(),
	}, nil
}

// Outcome is either an assignment or "no driver available". The latter is an
// expected branch, not an error.
type Outcome struct {
	Assigned   bool
	Driver     driver.Driver
	DistanceKm float64
	ETAMinutes int
	Record     *service.Record
}

// DriverPool is the slice of the driver store the engine needs.
type DriverPool interface {
	ListAvailable(ctx context.Context) ([]driver.Driver, error)
	TryReserve(ctx context.Context, id types.ID) (bool, error)
	Release(ctx context.Context, id types.ID) error
}

// RecordCreator persists the assignment; implemented by service.Service.
type RecordCreator interface {
	CreateAssigned(ctx context.Context, cmd service.CreateAssignedCommand) (*service.Record, error)
}

type Engine struct {
	pool        DriverPool
	records     RecordCreator
	eta         *eta.Estimator
	maxAttempts int
	log         *logrus.Logger
}

// NewEngine rejects a non-positive attempt bound at construction.
func NewEngine(pool DriverPool, records RecordCreator, est *eta.Estimator, maxAttempts int, log *logrus.Logger) (*Engine, error) {
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("dispatch: max attempts must be positive, got %d", maxAttempts)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{pool: pool, records: records, eta: est, maxAttempts: maxAttempts, log: log}, nil
}

// Dispatch snapshots the available pool, then retries nearest-first: a lost
// TryReserve race just removes the candidate and moves to the next-nearest,
// so every iteration strictly shrinks the set and the loop always terminates.
// Reservation conflicts never escape this method.
func (e *Engine) Dispatch(ctx context.Context, req PickupRequest) (Outcome, error) {
	if err := req.Pickup.Validate(); err != nil {
		return Outcome{}, err
	}

	remaining, err := e.pool.ListAvailable(ctx)
	if err != nil {
		return Outcome{}, err
	}

	for attempt := 0; attempt < e.maxAttempts && len(remaining) > 0; attempt++ {
		best, distanceKm, ok := matching.Nearest(req.Pickup, remaining)
		if !ok {
			break
		}

		won, err := e.pool.TryReserve(ctx, best.ID)
		if err != nil {
			return Outcome{}, err
		}
		if !won {
			// lost the race; drop this candidate and try the next-nearest
			remaining = removeDriver(remaining, best.ID)
			continue
		}

		etaMinutes := e.eta.MinutesBetween(ctx, best.Position, req.Pickup, distanceKm)
		rec, err := e.records.CreateAssigned(ctx, service.CreateAssignedCommand{
			RequesterID: req.RequesterID,
			DriverID:    best.ID,
			Pickup:      req.Pickup,
			DistanceKm:  distanceKm,
			ETAMinutes:  etaMinutes,
		})
		if err != nil {
			// do not strand the reservation
			if relErr := e.pool.Release(ctx, best.ID); relErr != nil {
				e.log.WithError(relErr).WithField("driver_id", best.ID).Error("failed to release driver after record creation failure")
			}
			return Outcome{}, err
		}

		e.log.WithFields(logrus.Fields{
			"request_id":  req.ID,
			"driver_id":   best.ID,
			"distance_km": distanceKm,
			"eta_minutes": etaMinutes,
		}).Info("request dispatched")

		return Outcome{
			Assigned:   true,
			Driver:     best,
			DistanceKm: distanceKm,
			ETAMinutes: etaMinutes,
			Record:     rec,
		}, nil
	}

	e.log.WithField("request_id", req.ID).Info("no driver available")
	return Outcome{}, nil
}

func removeDriver(ds []driver.Driver, id types.ID) []driver.Driver {
	out := ds[:0]
	for _, d := range ds {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}
