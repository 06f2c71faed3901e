package services

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
	"sort"
	"strings"
	"time"
)

// PlanTrip orders a driver's deliveries using a greedy nearest-neighbor walk.
//
// Each step moves to the closest remaining delivery city, by travel time when
// the provider reports durations and by kilometers otherwise. Ties go to the
// alphabetically first city so the plan is deterministic. No global
// optimization is attempted.
func PlanTrip(
	ctx context.Context,
	driverID int64,
	start string,
	departAt time.Time,
	orders []domain.Order,
	cityOf func(address string) string,
	provider ports.DistanceProvider,
) (*domain.TripPlan, error) {
	if start == "" {
		return nil, errors.New("plan trip: start must be non-empty")
	}

	plan := &domain.TripPlan{DriverID: driverID, Start: start, DepartAt: departAt, Stops: []domain.TripStop{}}
	if len(orders) == 0 {
		return plan, nil
	}

	byCity := make(map[string][]int64)
	for _, o := range orders {
		c := cityOf(o.DeliveryAddress)
		byCity[c] = append(byCity[c], o.ID)
	}

	remaining := make(map[string]struct{}, len(byCity))
	for c := range byCity {
		remaining[c] = struct{}{}
	}

	current := start
	clock := departAt

	for len(remaining) > 0 {
		cities := make([]string, 0, len(remaining))
		for c := range remaining {
			cities = append(cities, c)
		}
		sort.Strings(cities)

		results, err := legsFrom(ctx, provider, current, cities)
		if err != nil {
			return nil, fmt.Errorf("plan trip: %w", err)
		}

		best := ""
		var bestLeg ports.DistanceResult
		for _, c := range cities {
			leg := results[c]
			if best == "" || closer(leg, bestLeg) {
				best, bestLeg = c, leg
			}
		}

		clock = clock.Add(time.Duration(bestLeg.DurationSeconds) * time.Second)
		plan.TotalDurationSeconds += bestLeg.DurationSeconds
		plan.TotalDistanceKm += bestLeg.DistanceKm
		plan.Stops = append(plan.Stops, domain.TripStop{City: best, ArriveAt: clock, OrderIDs: byCity[best]})

		delete(remaining, best)
		current = best
	}

	return plan, nil
}

// closer reports whether a is a strictly better next leg than b.
func closer(a, b ports.DistanceResult) bool {
	if a.DurationSeconds != b.DurationSeconds {
		return a.DurationSeconds < b.DurationSeconds
	}
	return a.DistanceKm < b.DistanceKm
}

// legsFrom looks up every leg from origin. Batched lookups are preferred
// when the provider supports them.
func legsFrom(ctx context.Context, provider ports.DistanceProvider, origin string, cities []string) (map[string]ports.DistanceResult, error) {
	results := make(map[string]ports.DistanceResult, len(cities))

	var pending []string
	for _, c := range cities {
		if c == origin {
			results[c] = ports.DistanceResult{}
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return results, nil
	}

	if m, ok := provider.(ports.DistanceMatrixProvider); ok {
		batch, err := m.GetDistances(ctx, origin, pending)
		if err != nil {
			return nil, fmt.Errorf("distances from %q: %w", origin, err)
		}
		for k, v := range batch {
			results[k] = v
		}
	} else {
		for _, c := range pending {
			r, err := provider.GetDistance(ctx, origin, c)
			if err != nil {
				return nil, fmt.Errorf("distance from %q to %q: %w", origin, c, err)
			}
			results[c] = r
		}
	}

	for _, c := range pending {
		if _, ok := results[c]; !ok {
			return nil, fmt.Errorf("missing distance from %q to %q", origin, c)
		}
	}
	return results, nil
}

// firstCity is the default city extractor: text before the first comma.
func firstCity(address string) string {
	if i := strings.IndexByte(address, ','); i >= 0 {
		address = address[:i]
	}
	return strings.TrimSpace(address)
}

// Trip plans the calling driver's active deliveries. When start is empty the
// trip begins at the pickup city of the oldest active order.
func (s *DriverService) Trip(ctx context.Context, p *auth.Principal, start string) (*domain.TripPlan, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if !p.IsDriver() {
		return nil, forbidden(MsgForbidden)
	}
	if s.Routes == nil {
		return nil, errors.New("trip: no distance provider configured")
	}

	cityOf := s.CityOf
	if cityOf == nil {
		cityOf = firstCity
	}

	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{DriverID: &p.UserID})
	if err != nil {
		return nil, fmt.Errorf("trip: %w", err)
	}
	active := domain.ActiveOrders(orders, p.UserID)

	start = strings.TrimSpace(start)
	if start == "" && len(active) > 0 {
		oldest := active[0]
		for _, o := range active[1:] {
			if o.CreatedAt.Before(oldest.CreatedAt) {
				oldest = o
			}
		}
		start = cityOf(oldest.PickupAddress)
	}
	if start == "" {
		return &domain.TripPlan{DriverID: p.UserID, DepartAt: s.now(), Stops: []domain.TripStop{}}, nil
	}

	plan, err := PlanTrip(ctx, p.UserID, cityOf(start), s.now(), active, cityOf, s.Routes)
	if err != nil {
		return nil, err
	}
	return plan, nil
}
