package ports

import (
	"context"
	"freight-order-service/internal/domain"
)

// Persistent origin->destination distance cache. Keys are normalized by the caller.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}

// Persistent address->coordinates cache used by geocoding providers.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
