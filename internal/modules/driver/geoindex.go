// README: Redis GEO index over available drivers for nearby queries.
package driver

import (
	"context"

	"github.com/redis/go-redis/v9"

	"ridedispatch/internal/types"
)

const driverGeoKey = "dispatch:drivers"

// GeoIndex is a read-optimized view of available driver positions. The driver
// store stays the source of truth; the index only serves nearby lookups.
type GeoIndex struct {
	redis *redis.Client
}

func NewGeoIndex(redis *redis.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

func (g *GeoIndex) Add(ctx context.Context, id types.ID, p types.Point) error {
	return g.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

func (g *GeoIndex) Remove(ctx context.Context, id types.ID) error {
	return g.redis.ZRem(ctx, driverGeoKey, string(id)).Err()
}

// Nearby returns driver IDs within radiusKm of p, closest first.
func (g *GeoIndex) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := g.redis.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}
