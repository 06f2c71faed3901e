package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"strings"
	"time"
)

// PostgresDistanceCache shares city-to-city distances between backend
// instances. Rows older than MaxAge are treated as misses.
type PostgresDistanceCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewPostgresDistanceCache(db *sql.DB, maxAge time.Duration) *PostgresDistanceCache {
	return &PostgresDistanceCache{DB: db, MaxAge: maxAge}
}

// GetMany returns cached distances from origin, accepting rows stored in
// either direction.
func (s *PostgresDistanceCache) GetMany(ctx context.Context, origin string, destinations []string) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.pgcache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}
	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT origin, destination, distance_km, duration_seconds
	FROM distance_cache
	WHERE ($3::bigint = 0 OR updated_at > now() - make_interval(secs => $3::bigint))
		AND ((origin = $1 AND destination = ANY($2::text[]))
			OR (destination = $1 AND origin = ANY($2::text[])));
	`, origin, uniq, int64(s.MaxAge/time.Second))
	if err != nil {
		return nil, fmt.Errorf("get distance cache: %w", err)
	}
	return collectDistances(rows, origin)
}

// PutMany upserts results measured from origin.
func (s *PostgresDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.pgcache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_km, duration_seconds, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceKm, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}
	return nil
}
