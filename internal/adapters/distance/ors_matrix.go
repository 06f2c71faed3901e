package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
	"math"
	"net/http"
)

// maxMatrixLocations keeps every request under the public ORS matrix limit
// for the HGV profile. The origin takes one slot.
const maxMatrixLocations = 50

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// matrixFrom fetches road distance and driving time from origin to every
// destination, splitting large batches into several matrix calls.
func (o *ORSDistanceProvider) matrixFrom(ctx context.Context, origin domain.Coordinates, dests []string, points map[string]domain.Coordinates) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(dests))
	step := maxMatrixLocations - 1
	for start := 0; start < len(dests); start += step {
		chunk := dests[start:min(start+step, len(dests))]
		if err := o.matrixChunk(ctx, origin, chunk, points, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (o *ORSDistanceProvider) matrixChunk(ctx context.Context, origin domain.Coordinates, dests []string, points map[string]domain.Coordinates, out map[string]ports.DistanceResult) error {
	req := matrixRequest{
		Locations:    [][]float64{origin.LonLat()},
		Sources:      []int{0},
		Destinations: make([]int, len(dests)),
		Metrics:      []string{"distance", "duration"},
		Units:        "km",
	}
	for i, d := range dests {
		req.Locations = append(req.Locations, points[d].LonLat())
		req.Destinations[i] = i + 1
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("matrix: encode: %w", err)
	}

	endpoint := o.baseURL + "/v2/matrix/" + o.profile
	resp, err := o.call(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fmt.Errorf("matrix: decode: %w", err)
	}
	if len(mr.Distances) != 1 || len(mr.Durations) != 1 ||
		len(mr.Distances[0]) != len(dests) || len(mr.Durations[0]) != len(dests) {
		return fmt.Errorf("matrix: want a 1x%d answer, got %d distance and %d duration rows",
			len(dests), len(mr.Distances), len(mr.Durations))
	}

	for i, d := range dests {
		km, secs := mr.Distances[0][i], mr.Durations[0][i]
		if km == nil || secs == nil {
			return fmt.Errorf("matrix: no road to %q: %w", d, ports.ErrUnknownRoute)
		}
		// Orders are priced per whole kilometer.
		out[d] = ports.DistanceResult{
			DistanceKm:      int(math.Round(*km)),
			DurationSeconds: int(math.Round(*secs)),
		}
	}
	return nil
}
