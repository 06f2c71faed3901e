package cache

import (
	"database/sql"
	"fmt"
	"freight-order-service/internal/ports"
	"strings"
)

// uniqueKeys trims keys and drops blanks and duplicates, keeping order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// placeholders returns "?,?,?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// collectDistances reads (origin, destination, km, seconds) rows into a map
// keyed by the city on the far side of origin. A row measured from origin
// wins over its reverse.
func collectDistances(rows *sql.Rows, origin string) (map[string]ports.DistanceResult, error) {
	defer rows.Close()

	out := map[string]ports.DistanceResult{}
	forward := map[string]bool{}
	for rows.Next() {
		var from, to string
		var r ports.DistanceResult
		if err := rows.Scan(&from, &to, &r.DistanceKm, &r.DurationSeconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan: %w", err)
		}
		if from == origin {
			out[to], forward[to] = r, true
			continue
		}
		if !forward[from] {
			out[from] = r
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: rows: %w", err)
	}
	return out, nil
}
