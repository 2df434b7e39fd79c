// README: Arrival-time estimation from distance and average speed.
package eta

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"ridedispatch/internal/types"
)

// RouteClient is an optional live travel-time source (e.g. Google Maps
// Directions). Errors fall back to the speed-based estimate.
type RouteClient interface {
	TravelMinutes(ctx context.Context, from, to types.Point) (int, error)
}

type Estimator struct {
	speedKmh float64
	routes   RouteClient
	log      *logrus.Logger
}

// DefaultSpeedKmh mirrors the assumed city average of 60 km/h.
const DefaultSpeedKmh = 60.0

// NewEstimator rejects a non-positive speed at construction; a bad value is a
// configuration error, never a per-request one.
func NewEstimator(speedKmh float64, routes RouteClient, log *logrus.Logger) (*Estimator, error) {
	if speedKmh <= 0 {
		return nil, fmt.Errorf("eta: average speed must be positive, got %v", speedKmh)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Estimator{speedKmh: speedKmh, routes: routes, log: log}, nil
}

// Minutes converts a distance to whole minutes at the configured average
// speed, rounding half up (2.5 → 3).
func (e *Estimator) Minutes(distanceKm float64) int {
	return int(math.Floor(distanceKm/e.speedKmh*60 + 0.5))
}

// MinutesBetween asks the route client for a live estimate when one is
// configured, otherwise (or on error) derives minutes from distanceKm.
func (e *Estimator) MinutesBetween(ctx context.Context, from, to types.Point, distanceKm float64) int {
	if e.routes != nil {
		if m, err := e.routes.TravelMinutes(ctx, from, to); err == nil {
			return m
		} else {
			e.log.WithError(err).Debug("route client estimate failed, using speed-based fallback")
		}
	}
	return e.Minutes(distanceKm)
}
