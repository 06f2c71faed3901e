package ports

import "context"

// DistanceMatrixProvider answers one-origin, many-destination queries in a
// single round trip. The trip planner prefers it when a provider offers it.
type DistanceMatrixProvider interface {
	DistanceProvider
	// GetDistances is keyed by destination. Destinations without a road
	// may be missing from the result.
	GetDistances(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
}
