// README: Driver service: registration, location updates, nearby queries, and
// the reservation surface used by dispatch and the service lifecycle.
package driver

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"ridedispatch/internal/modules/geo"
	"ridedispatch/internal/types"
)

type Service struct {
	store Store
	index *GeoIndex // optional; nil disables the Redis nearby index
	log   *logrus.Logger
}

func NewService(store Store, index *GeoIndex, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, index: index, log: log}
}

func (s *Service) Register(ctx context.Context, d *Driver) error {
	if err := d.Position.Validate(); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = types.NewID()
	}
	if err := s.store.Save(ctx, d); err != nil {
		return err
	}
	if d.Availability == "" || d.Availability == StatusAvailable {
		s.indexAdd(ctx, d.ID, d.Position)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

// GetByUser resolves the driver profile owned by a user account.
func (s *Service) GetByUser(ctx context.Context, userID types.ID) (*Driver, error) {
	return s.store.GetByUserID(ctx, userID)
}

func (s *Service) ListAvailable(ctx context.Context) ([]Driver, error) {
	return s.store.ListAvailable(ctx)
}

func (s *Service) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateLocation(ctx, id, p); err != nil {
		return err
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.Availability == StatusAvailable {
		s.indexAdd(ctx, id, p)
	}
	return nil
}

// NearbyDrivers returns available drivers within radiusKm of p, closest
// first. It prefers the Redis GEO index and falls back to a store scan.
func (s *Service) NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64) ([]Driver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.index != nil {
		if ids, err := s.index.Nearby(ctx, p, radiusKm); err == nil {
			out := make([]Driver, 0, len(ids))
			for _, id := range ids {
				d, err := s.store.Get(ctx, id)
				if err != nil || d.Availability != StatusAvailable {
					continue
				}
				out = append(out, *d)
			}
			return out, nil
		} else {
			s.log.WithError(err).Warn("geo index nearby lookup failed, falling back to scan")
		}
	}

	all, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	type scored struct {
		d    Driver
		dist float64
	}
	within := make([]scored, 0, len(all))
	for _, d := range all {
		if dist := geo.DistanceKm(p, d.Position); dist <= radiusKm {
			within = append(within, scored{d, dist})
		}
	}
	sort.SliceStable(within, func(i, j int) bool { return within[i].dist < within[j].dist })
	out := make([]Driver, len(within))
	for i, sc := range within {
		out[i] = sc.d
	}
	return out, nil
}

// TryReserve claims a driver for exactly one request. On success the driver
// leaves the nearby index until released.
func (s *Service) TryReserve(ctx context.Context, id types.ID) (bool, error) {
	ok, err := s.store.TryReserve(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			s.log.WithError(err).WithField("driver_id", id).Warn("failed to drop reserved driver from geo index")
		}
	}
	return true, nil
}

// Release returns a driver to the available pool. Idempotent.
func (s *Service) Release(ctx context.Context, id types.ID) error {
	if err := s.store.Release(ctx, id); err != nil {
		return err
	}
	if d, err := s.store.Get(ctx, id); err == nil && d.Availability == StatusAvailable {
		s.indexAdd(ctx, id, d.Position)
	}
	return nil
}

func (s *Service) indexAdd(ctx context.Context, id types.ID, p types.Point) {
	if s.index == nil {
		return
	}
	if err := s.index.Add(ctx, id, p); err != nil {
		s.log.WithError(err).WithField("driver_id", id).Warn("failed to add driver to geo index")
	}
}
