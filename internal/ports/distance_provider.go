package ports

import "context"

// DistanceResult is a road distance in whole kilometers and the driving time.
// DurationSeconds is zero when the source only knows distances.
type DistanceResult struct {
	DistanceKm      int
	DurationSeconds int
}

// DistanceProvider measures the road between two cities or addresses.
type DistanceProvider interface {
	// GetDistance fails with an error wrapping ErrUnknownRoute when the
	// provider has no answer for the pair.
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}
