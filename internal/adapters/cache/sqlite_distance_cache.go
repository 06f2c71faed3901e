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

// SqliteDistanceCache stores city-to-city road distances next to the order
// data. Keys are city keys produced by the distance provider.
type SqliteDistanceCache struct {
	DB     *sql.DB
	MaxAge time.Duration

	now func() time.Time
}

func NewSqliteDistanceCache(db *sql.DB, maxAge time.Duration) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db, MaxAge: maxAge, now: time.Now}
}

func (s *SqliteDistanceCache) oldest() int64 {
	if s.MaxAge <= 0 {
		return 0
	}
	return s.now().Add(-s.MaxAge).Unix()
}

// GetMany returns cached distances from origin to each destination. Roads
// between cities are treated as symmetric, so a row stored in the opposite
// direction also counts as a hit.
func (s *SqliteDistanceCache) GetMany(ctx context.Context, origin string, destinations []string) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.sqlitecache.GetMany")(&err)

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

	// SQLite cannot bind a slice; only the placeholder lists are interpolated.
	in := placeholders(len(uniq))
	q := fmt.Sprintf(`
	SELECT origin, destination, distance_km, duration_seconds
	FROM distance_cache
	WHERE updated_at >= ?
		AND ((origin = ? AND destination IN (%s))
			OR (destination = ? AND origin IN (%s)));
	`, in, in)

	args := make([]any, 0, 3+2*len(uniq))
	args = append(args, s.oldest(), origin)
	for _, d := range uniq {
		args = append(args, d)
	}
	args = append(args, origin)
	for _, d := range uniq {
		args = append(args, d)
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: %w", err)
	}
	return collectDistances(rows, origin)
}

// PutMany stores results measured from origin, stamped with the current time.
func (s *SqliteDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
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
	INSERT OR REPLACE INTO distance_cache (origin, destination, distance_km, duration_seconds, updated_at)
	VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	stampedAt := s.now().Unix()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceKm, r.DurationSeconds, stampedAt); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}
	return nil
}
