// README: Google Maps Directions client used as a live travel-time source.
package eta

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"ridedispatch/internal/types"
)

// MapsClient satisfies RouteClient via the Directions API, driving mode.
type MapsClient struct {
	client *maps.Client
}

func NewMapsClient(apiKey string) (*MapsClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &MapsClient{client: client}, nil
}

func (m *MapsClient) TravelMinutes(ctx context.Context, from, to types.Point) (int, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat, from.Lng),
		Destination: fmt.Sprintf("%f,%f", to.Lat, to.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := m.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return int(math.Floor(leg.Duration.Minutes() + 0.5)), nil
}
