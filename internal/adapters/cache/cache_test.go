package cache

import (
	"context"
	"database/sql"
	"freight-order-service/internal/adapters/repositories"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/db"
	"freight-order-service/internal/ports"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func openCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := repositories.InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestSqliteDistanceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteDistanceCache(openCacheDB(t), 0)

	err := c.PutMany(ctx, "москва", map[string]ports.DistanceResult{
		"ярославль": {DistanceKm: 274, DurationSeconds: 14400},
		"казань":    {DistanceKm: 807, DurationSeconds: 40000},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, "москва", []string{"ярославль", " ярославль ", "сочи", ""})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got["ярославль"].DistanceKm != 274 {
		t.Fatalf("cache = %+v", got)
	}
}

func TestSqliteDistanceCacheReverseDirection(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteDistanceCache(openCacheDB(t), 0)

	_ = c.PutMany(ctx, "москва", map[string]ports.DistanceResult{"ярославль": {DistanceKm: 274}})
	_ = c.PutMany(ctx, "ярославль", map[string]ports.DistanceResult{"кострома": {DistanceKm: 80}})
	_ = c.PutMany(ctx, "кострома", map[string]ports.DistanceResult{"ярославль": {DistanceKm: 81}})

	got, err := c.GetMany(ctx, "ярославль", []string{"москва", "кострома"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["москва"].DistanceKm != 274 {
		t.Fatalf("reverse row not used: %+v", got)
	}
	if got["кострома"].DistanceKm != 80 {
		t.Fatalf("forward row must win over reverse: %+v", got)
	}
}

func TestSqliteDistanceCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteDistanceCache(openCacheDB(t), time.Hour)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.PutMany(ctx, "москва", map[string]ports.DistanceResult{"сочи": {DistanceKm: 1584}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	if got, _ := c.GetMany(ctx, "москва", []string{"сочи"}); len(got) != 1 {
		t.Fatalf("fresh entry missing: %+v", got)
	}

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	if got, _ := c.GetMany(ctx, "москва", []string{"сочи"}); len(got) != 0 {
		t.Fatalf("stale entry returned: %+v", got)
	}
}

func TestSqliteGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteGeocodeCache(openCacheDB(t))

	in := map[string]domain.Coordinates{"москва": {Lon: 37.6173, Lat: 55.7558}}
	if err := c.PutMany(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.GetMany(ctx, []string{"москва", "тверь"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got["москва"] != in["москва"] {
		t.Fatalf("cache = %+v", got)
	}
}

func TestRedisDistanceCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisDistanceCache(client, time.Minute)
	err := c.PutMany(ctx, "кострома", map[string]ports.DistanceResult{"иваново": {DistanceKm: 110, DurationSeconds: 6000}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	if !mr.Exists("distance:иваново|кострома") {
		t.Fatalf("expected hash key in redis, keys = %v", mr.Keys())
	}

	got, err := c.GetMany(ctx, "кострома", []string{"иваново", "вологда"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got["иваново"] != (ports.DistanceResult{DistanceKm: 110, DurationSeconds: 6000}) {
		t.Fatalf("cache = %+v", got)
	}

	back, err := c.GetMany(ctx, "иваново", []string{"кострома"})
	if err != nil || back["кострома"].DistanceKm != 110 {
		t.Fatalf("reverse lookup = %+v, err = %v", back, err)
	}

	mr.FastForward(2 * time.Minute)
	got, err = c.GetMany(ctx, "кострома", []string{"иваново"})
	if err != nil {
		t.Fatalf("get after ttl: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired entry returned: %+v", got)
	}
}

func TestUniqueKeys(t *testing.T) {
	got := uniqueKeys([]string{" a", "b", "a", "", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("uniqueKeys = %v", got)
	}
	if placeholders(3) != "?,?,?" || placeholders(0) != "" {
		t.Fatalf("placeholders mismatch")
	}
}
