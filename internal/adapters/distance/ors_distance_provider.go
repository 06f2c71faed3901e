package distance

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-hgv"
)

// ORSDistanceProvider routes between Russian cities with OpenRouteService.
// Cities are geocoded to settlement points, then driving distances come from
// the matrix endpoint. Both steps consult the optional caches first.
//
// It is safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

type ORSOption func(*ORSDistanceProvider)

// WithBaseURL points the provider at a self-hosted ORS instance.
func WithBaseURL(u string) ORSOption {
	return func(o *ORSDistanceProvider) {
		if u = strings.TrimRight(u, "/"); u != "" {
			o.baseURL = u
		}
	}
}

// WithProfile selects the routing profile, e.g. "driving-car" for vans.
func WithProfile(p string) ORSOption {
	return func(o *ORSDistanceProvider) {
		if p != "" {
			o.profile = p
		}
	}
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSDistanceProvider) {
		if c != nil {
			o.session = c
		}
	}
}

// NewORSDistanceProvider needs an API key. Either cache may be nil.
func NewORSDistanceProvider(apiKey string, distances ports.DistanceCache, geocodes ports.GeocodeCache, opts ...ORSOption) (*ORSDistanceProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ors: api key is empty")
	}
	o := &ORSDistanceProvider{
		session:       &http.Client{Timeout: 15 * time.Second},
		apiKey:        apiKey,
		baseURL:       DefaultORSBaseURL,
		profile:       DefaultORSProfile,
		country:       "RU",
		distanceCache: distances,
		geocodeCache:  geocodes,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// cityKey reduces an address or city name to the lower-case settlement
// name used for geocoding and as the cache key.
func cityKey(s string) string {
	return strings.ToLower(NormalizeCity(ExtractCity(s)))
}

// GetDistance is GetDistances with a single destination.
func (o *ORSDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	from, to := cityKey(origin), cityKey(destination)
	if from == "" || to == "" {
		return ports.DistanceResult{}, fmt.Errorf("ors distance %q -> %q: empty city: %w", origin, destination, ports.ErrUnknownRoute)
	}

	rs, err := o.GetDistances(ctx, from, []string{to})
	if err != nil {
		return ports.DistanceResult{}, err
	}
	r, ok := rs[to]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("ors distance %q -> %q: %w", from, to, ports.ErrUnknownRoute)
	}
	return r, nil
}

// GetDistances returns the road distance and driving time from origin to each
// destination city. Results are keyed by the destination's city key; a
// destination in the origin city is omitted.
func (o *ORSDistanceProvider) GetDistances(ctx context.Context, origin string, destinations []string) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	from := cityKey(origin)
	if from == "" {
		return nil, errors.New("ors distances: origin city is empty")
	}
	dests := uniqueCities(from, destinations)
	if len(dests) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	out, misses, err := o.cachedDistances(ctx, from, dests)
	if err != nil || len(misses) == 0 {
		return out, err
	}

	points, err := o.locate(ctx, append([]string{from}, misses...))
	if err != nil {
		return nil, fmt.Errorf("ors distances from %q: %w", from, err)
	}

	fetched, err := o.matrixFrom(ctx, points[from], misses, points)
	if err != nil {
		return nil, fmt.Errorf("ors distances from %q: %w", from, err)
	}
	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, from, fetched); err != nil {
			obs.FromContext(ctx).Warn("distance cache write failed", zap.String("origin", from), zap.Error(err))
		}
	}

	for k, v := range fetched {
		out[k] = v
	}
	return out, nil
}

func uniqueCities(origin string, destinations []string) []string {
	seen := map[string]bool{origin: true}
	out := make([]string, 0, len(destinations))
	for _, d := range destinations {
		k := cityKey(d)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// cachedDistances splits dests into cache hits and the cities still to fetch.
func (o *ORSDistanceProvider) cachedDistances(ctx context.Context, origin string, dests []string) (map[string]ports.DistanceResult, []string, error) {
	hits := map[string]ports.DistanceResult{}
	if o.distanceCache != nil {
		cached, err := o.distanceCache.GetMany(ctx, origin, dests)
		if err != nil {
			return nil, nil, fmt.Errorf("ors distance cache: %w", err)
		}
		for k, v := range cached {
			hits[k] = v
		}
	}

	var misses []string
	for _, d := range dests {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}
	return hits, misses, nil
}

// locate returns coordinates for every city, geocoding only those the cache
// does not know.
func (o *ORSDistanceProvider) locate(ctx context.Context, cities []string) (map[string]domain.Coordinates, error) {
	points := make(map[string]domain.Coordinates, len(cities))
	if o.geocodeCache != nil {
		cached, err := o.geocodeCache.GetMany(ctx, cities)
		if err != nil {
			return nil, fmt.Errorf("geocode cache: %w", err)
		}
		for k, v := range cached {
			points[k] = v
		}
	}

	var unknown []string
	for _, c := range cities {
		if _, ok := points[c]; !ok {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) == 0 {
		return points, nil
	}

	fresh, err := o.geocodeCities(ctx, unknown)
	if err != nil {
		return nil, err
	}
	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			obs.FromContext(ctx).Warn("geocode cache write failed", zap.Int("cities", len(fresh)), zap.Error(err))
		}
	}
	for k, v := range fresh {
		points[k] = v
	}
	return points, nil
}
