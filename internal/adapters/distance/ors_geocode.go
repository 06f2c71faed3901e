package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"net/http"
)

// Pelias layers that describe a settlement. Orders are priced city to city,
// so street-level hits would only add noise.
const geocodeLayers = "locality,localadmin,county"

type geocodeFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Label string `json:"label"`
		Layer string `json:"layer"`
	} `json:"properties"`
}

type geocodeResponse struct {
	Features []geocodeFeature `json:"features"`
}

// geocodeCities resolves normalized city names one by one. Each name is
// looked up once.
func (o *ORSDistanceProvider) geocodeCities(ctx context.Context, cities []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeCities")(&err)

	out := make(map[string]domain.Coordinates, len(cities))
	for _, city := range cities {
		if _, done := out[city]; done {
			continue
		}
		c, err := o.geocodeCity(ctx, city)
		if err != nil {
			return nil, err
		}
		out[city] = c
	}
	return out, nil
}

func (o *ORSDistanceProvider) geocodeCity(ctx context.Context, city string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.call(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", city)
		q.Set("boundary.country", o.country)
		q.Set("layers", geocodeLayers)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	defer resp.Body.Close()

	var gr geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode: %w", city, err)
	}
	if len(gr.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: no settlement found: %w", city, ports.ErrUnknownRoute)
	}

	f := gr.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: malformed point %v", city, f.Geometry.Coordinates)
	}
	c := domain.Coordinates{Lon: f.Geometry.Coordinates[0], Lat: f.Geometry.Coordinates[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: point %v out of range", city, f.Geometry.Coordinates)
	}
	return c, nil
}
