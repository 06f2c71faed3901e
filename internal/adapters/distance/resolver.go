package distance

import (
	"context"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"math"

	"go.uber.org/zap"
)

const (
	SameCityKm = 10
	FallbackKm = 100

	// DefaultSpeedKmh turns kilometers into driving time for legs whose
	// source reports no duration.
	DefaultSpeedKmh = 60.0
)

// Source names which rule produced a distance.
type Source string

const (
	SourceSameCity Source = "same_city"
	SourceTable    Source = "table"
	SourceRouting  Source = "routing"
	SourceFallback Source = "fallback"
)

// Resolver estimates the road distance between two addresses. It never fails:
// anything it cannot answer gets FallbackKm.
type Resolver struct {
	Table *TableProvider
	// Routing is consulted for pairs missing from the table. May be nil.
	Routing ports.DistanceProvider
	// SpeedKmh estimates durations for legs without one. Zero means
	// DefaultSpeedKmh.
	SpeedKmh float64
}

func NewResolver(routing ports.DistanceProvider) *Resolver {
	return &Resolver{Table: NewTableProvider(), Routing: routing, SpeedKmh: DefaultSpeedKmh}
}

// DistanceKm returns the distance between pickup and delivery addresses.
func (r *Resolver) DistanceKm(ctx context.Context, pickup, delivery string) float64 {
	km, _ := r.Resolve(ctx, pickup, delivery)
	return float64(km)
}

// Resolve is DistanceKm plus the rule that answered.
func (r *Resolver) Resolve(ctx context.Context, pickup, delivery string) (int, Source) {
	res, src := r.Leg(ctx, pickup, delivery)
	return res.DistanceKm, src
}

// Leg resolves one pair with its driving time. Routing durations are kept;
// every other rule gets one estimated from SpeedKmh.
func (r *Resolver) Leg(ctx context.Context, pickup, delivery string) (ports.DistanceResult, Source) {
	a := NormalizeCity(ExtractCity(pickup))
	b := NormalizeCity(ExtractCity(delivery))
	if a == "" || b == "" {
		return r.estimate(FallbackKm), SourceFallback
	}
	if res, src, ok := r.local(a, b); ok {
		return res, src
	}

	if r.Routing != nil {
		res, err := r.Routing.GetDistance(ctx, a, b)
		if err == nil && res.DistanceKm > 0 {
			return r.withDuration(res), SourceRouting
		}
		if err != nil {
			obs.FromContext(ctx).Warn("routing distance failed, using fallback",
				zap.String("from", a), zap.String("to", b), zap.Error(err))
		}
	}

	return r.estimate(FallbackKm), SourceFallback
}

// local answers a normalized pair without the network.
func (r *Resolver) local(a, b string) (ports.DistanceResult, Source, bool) {
	if sameCity(a, b) {
		return r.estimate(SameCityKm), SourceSameCity, true
	}
	table := r.Table
	if table == nil {
		table = NewTableProvider()
	}
	if km, ok := table.Lookup(a, b); ok {
		return r.estimate(km), SourceTable, true
	}
	return ports.DistanceResult{}, "", false
}

func (r *Resolver) estimate(km int) ports.DistanceResult {
	return r.withDuration(ports.DistanceResult{DistanceKm: km})
}

func (r *Resolver) withDuration(res ports.DistanceResult) ports.DistanceResult {
	if res.DurationSeconds > 0 {
		return res
	}
	speed := r.SpeedKmh
	if speed <= 0 {
		speed = DefaultSpeedKmh
	}
	res.DurationSeconds = int(math.Round(float64(res.DistanceKm) / speed * 3600))
	return res
}

// GetDistance lets the resolver stand in as a ports.DistanceProvider. It
// never returns an error.
func (r *Resolver) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	res, _ := r.Leg(ctx, origin, destination)
	return res, nil
}

// GetDistances answers table and same-city legs locally and sends the rest
// to the routing provider in one batch when it supports matrices. Every
// destination gets a result.
func (r *Resolver) GetDistances(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(destinations))
	from := NormalizeCity(ExtractCity(origin))

	var pending []string
	for _, d := range destinations {
		to := NormalizeCity(ExtractCity(d))
		if from == "" || to == "" {
			out[d] = r.estimate(FallbackKm)
			continue
		}
		if res, _, ok := r.local(from, to); ok {
			out[d] = res
			continue
		}
		pending = append(pending, d)
	}
	if len(pending) == 0 {
		return out, nil
	}

	if m, ok := r.Routing.(ports.DistanceMatrixProvider); ok {
		batch, err := m.GetDistances(ctx, from, pending)
		if err != nil {
			obs.FromContext(ctx).Warn("routing matrix failed, resolving one by one",
				zap.String("from", from), zap.Int("destinations", len(pending)), zap.Error(err))
		}
		rest := pending[:0]
		for _, d := range pending {
			res, ok := batch[d]
			if !ok {
				// The ORS provider keys its answers by lowercased city.
				res, ok = batch[cityKey(d)]
			}
			if ok && res.DistanceKm > 0 {
				out[d] = r.withDuration(res)
				continue
			}
			rest = append(rest, d)
		}
		pending = rest
	}

	for _, d := range pending {
		out[d], _ = r.Leg(ctx, origin, d)
	}
	return out, nil
}
